package models

// AnalysisRequest binds POST /api/ai-analysis/:ticker.
type AnalysisRequest struct {
	Ticker      string `param:"ticker" json:"-" validate:"required,max=32"`
	UserQuery   string `json:"userQuery" validate:"max=2000"`
	Timeframe   string `json:"timeframe" default:"1d" validate:"oneof=1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo"`
	NewsDays    int    `json:"newsDays" default:"14" validate:"gte=1,lte=365"`
	DetailLevel string `json:"detailLevel" default:"low" validate:"oneof=low std"`
	Objective   string `json:"objective" default:"general" validate:"max=200"`
	UserID      string `json:"userId" validate:"max=128"`
}

// DerivedFactsRequest binds GET /api/derived/:ticker.
type DerivedFactsRequest struct {
	Ticker      string `param:"ticker" json:"-" validate:"required,max=32"`
	Timeframe   string `query:"timeframe" default:"1d" validate:"oneof=1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo"`
	NewsDays    int    `query:"newsDays" default:"30" validate:"gte=1,lte=365"`
	DetailLevel string `query:"detailLevel" default:"std" validate:"oneof=low std"`
}

// NewsDigestRequest binds GET /api/news-digest/:symbol.
type NewsDigestRequest struct {
	Symbol string `param:"symbol" validate:"required,max=32"`
}

// NextActionsKey identifies one user's checklist for one ticker.
type NextActionsKey struct {
	UserID string `param:"userId" json:"-" validate:"required,max=128"`
	Ticker string `param:"ticker" json:"-" validate:"required,max=32"`
}

type PutNextActionsRequest struct {
	NextActionsKey
	Actions []NextActionInput `json:"actions" validate:"required,dive"`
}

// NextActionInput is a client-supplied checklist item. Labels are bounded
// here rather than on NextAction, whose labels may come from the model.
type NextActionInput struct {
	ID      string `json:"id" validate:"required"`
	Label   string `json:"label" validate:"max=500"`
	Checked bool   `json:"checked"`
}

func (r *PutNextActionsRequest) NextActions() []NextAction {
	out := make([]NextAction, len(r.Actions))
	for i, a := range r.Actions {
		out[i] = NextAction{ID: a.ID, Label: a.Label, Checked: a.Checked}
	}
	return out
}

type AddNextActionRequest struct {
	NextActionsKey
	Label string `json:"label" validate:"required,max=500"`
}

type DeleteNextActionRequest struct {
	NextActionsKey
	ActionID string `param:"actionId" json:"-" validate:"required"`
}
