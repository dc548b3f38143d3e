package models

import "time"

// CompletionRequest is one call to the generation source. RepairHint carries
// the previous attempt's validation feedback; LowCreativity asks for
// near-deterministic output.
type CompletionRequest struct {
	SystemPrompt  string
	UserPrompt    string
	RepairHint    string
	LowCreativity bool
}

// TokenUsage mirrors the provider's usage block.
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Add accumulates usage across attempts.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

type Completion struct {
	Text    string
	Usage   TokenUsage
	Latency time.Duration
}
