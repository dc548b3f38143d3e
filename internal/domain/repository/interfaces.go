package repository

import (
	"context"

	"TrueSignal/internal/domain/models"
)

// MarketData is the upstream quote/history/fundamentals provider. Every
// method must honour ctx and surface ErrUpstreamTimeout on deadline.
type MarketData interface {
	Search(ctx context.Context, query string) ([]models.SymbolMatch, error)
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	History(ctx context.Context, symbol string, interval Timeframe, rangeDays int) (*models.History, error)
	Fundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
	Analyst(ctx context.Context, symbol string) (*models.AnalystConsensus, error)
	Calendar(ctx context.Context, symbol string) (*models.Calendar, error)
	News(ctx context.Context, symbol string, maxArticles int) ([]models.RawNewsItem, error)
	Profile(ctx context.Context, symbol string) (models.Profile, error)
}

// Generator is the opaque text completion source.
type Generator interface {
	Complete(ctx context.Context, req models.CompletionRequest) (*models.Completion, error)
}

type IDGenerator interface {
	NewID() string
}

// NextActionsStore persists the checklist per user and ticker. Get reports
// whether an entry exists so an empty list can be told apart from none.
type NextActionsStore interface {
	Get(ctx context.Context, userID, ticker string) ([]models.NextAction, bool, error)
	Put(ctx context.Context, userID, ticker string, actions []models.NextAction) error
}

type EventPublisher interface {
	PublishAnalysis(ctx context.Context, ev *models.AnalysisEvent) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(outcome string)
	RecordAttempt(result string)
	RecordError(kind string)
	RecordTokens(kind string, n int64)
	RecordFactsBytes(n int)
	RecordLatency(op string, seconds float64)
}
