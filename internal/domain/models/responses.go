package models

import "encoding/json"

var emptyObject = json.RawMessage(`{}`)

// AnalysisEnvelope is the analysis plus pass-through side data.
type AnalysisEnvelope struct {
	*AnalysisResult
	Quote        json.RawMessage `json:"quote"`
	Profile      json.RawMessage `json:"profile"`
	Fundamentals json.RawMessage `json:"fundamentals"`
	Analyst      json.RawMessage `json:"analyst"`
}

// NewAnalysisEnvelope wraps r with empty side data.
func NewAnalysisEnvelope(r *AnalysisResult) AnalysisEnvelope {
	return AnalysisEnvelope{
		AnalysisResult: r,
		Quote:          emptyObject,
		Profile:        emptyObject,
		Fundamentals:   emptyObject,
		Analyst:        emptyObject,
	}
}

// FailureSummary is the client-facing view of a failed generation that was
// replaced by the deterministic fallback.
type FailureSummary struct {
	Classification string   `json:"classification"`
	Message        string   `json:"message"`
	Issues         []string `json:"issues,omitempty"`
}

type AnalysisResponse struct {
	AIAnalysis      AnalysisEnvelope `json:"aiAnalysis"`
	Tokens          TokenUsage       `json:"tokens"`
	Latency         int64            `json:"latency"`
	PromptChars     int              `json:"promptChars"`
	RepairAttempted bool             `json:"repairAttempted"`
	Cached          bool             `json:"cached"`
	Fallback        bool             `json:"fallback"`
	Failure         *FailureSummary  `json:"failure,omitempty"`
}

type NewsDigestResponse struct {
	Ticker     string     `json:"ticker"`
	NewsDigest []NewsItem `json:"newsDigest"`
}

type NextActionsResponse struct {
	Actions []NextAction `json:"actions"`
}
