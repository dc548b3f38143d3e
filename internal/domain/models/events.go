package models

import "time"

// Analysis outcomes recorded in metrics and audit events.
const (
	OutcomeSuccess  = "success"
	OutcomeRepaired = "repaired"
	OutcomeFallback = "fallback"
	OutcomeCached   = "cached"
)

// AnalysisEvent is the audit record published after every analysis request.
type AnalysisEvent struct {
	Ticker         string    `json:"ticker"`
	UserID         string    `json:"userId,omitempty"`
	Outcome        string    `json:"outcome"`
	Classification string    `json:"classification,omitempty"`
	Repaired       bool      `json:"repaired"`
	Fallback       bool      `json:"fallback"`
	Cached         bool      `json:"cached"`
	LatencyMs      int64     `json:"latencyMs"`
	Tokens         int64     `json:"tokens"`
	PromptChars    int       `json:"promptChars"`
	At             time.Time `json:"at"`
}
