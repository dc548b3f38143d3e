package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"TrueSignal/internal/domain/models"
	domrepo "TrueSignal/internal/domain/repository"
	"TrueSignal/internal/services/analysis"
	"TrueSignal/internal/services/facts"
	"TrueSignal/pkg/cache"
	xlogger "TrueSignal/pkg/logger"
	"TrueSignal/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const analysisCachePrefix = "analysis"

// AnalysisUseCase serves one analysis request end to end: symbol resolution,
// facts, generation with fallback, checklist merge and side data.
type AnalysisUseCase struct {
	md        domrepo.MarketData
	compactor *facts.Compactor
	orch      *analysis.Orchestrator
	actions   domrepo.NextActionsStore
	events    domrepo.EventPublisher
	cache     cache.Service
	cacheTTL  time.Duration
	metrics   domrepo.Metrics
	logger    *xlogger.Logger
	now       func() time.Time
}

func NewAnalysisUseCase(
	md domrepo.MarketData,
	compactor *facts.Compactor,
	orch *analysis.Orchestrator,
	actions domrepo.NextActionsStore,
	events domrepo.EventPublisher,
	c cache.Service,
	cacheTTL time.Duration,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
) *AnalysisUseCase {
	return &AnalysisUseCase{
		md:        md,
		compactor: compactor,
		orch:      orch,
		actions:   actions,
		events:    events,
		cache:     c,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// cacheInputs is everything that shapes a response except the user.
type cacheInputs struct {
	Symbol      string `json:"symbol"`
	UserQuery   string `json:"userQuery"`
	Timeframe   string `json:"timeframe"`
	NewsDays    int    `json:"newsDays"`
	DetailLevel string `json:"detailLevel"`
	Objective   string `json:"objective"`
}

// Analyze returns an analysis for req. Only symbol resolution and the facts
// build fail the request; a failed generation is replaced by the fallback.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	start := uc.now()
	log := uc.logger.With(xlogger.String("ticker", req.Ticker))
	log.Info("analysis.request",
		xlogger.String("timeframe", req.Timeframe),
		xlogger.Int("news_days", req.NewsDays),
		xlogger.String("detail", req.DetailLevel),
		xlogger.String("objective", req.Objective),
	)

	symbol, err := resolveSymbol(ctx, uc.md, req.Ticker)
	if err != nil {
		uc.metrics.RecordError("resolve")
		return nil, err
	}
	log = log.With(xlogger.String("symbol", symbol))

	key, err := cache.HashJSON(cacheInputs{
		Symbol:      symbol,
		UserQuery:   req.UserQuery,
		Timeframe:   req.Timeframe,
		NewsDays:    req.NewsDays,
		DetailLevel: req.DetailLevel,
		Objective:   req.Objective,
	})
	if err != nil {
		return nil, err
	}
	key = cache.GenerateKey(analysisCachePrefix, key)

	var cached models.AnalysisResponse
	switch err := uc.cache.Get(ctx, key, &cached); {
	case err == nil && cached.AIAnalysis.AnalysisResult != nil:
		cached.Cached = true
		uc.mergeNextActions(ctx, log, req.UserID, symbol, cached.AIAnalysis.AnalysisResult)
		uc.finish(ctx, log, req, symbol, &cached, models.OutcomeCached, "", start)
		return &cached, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		log.Warn("analysis.cache_get_failed", xlogger.Error(err))
	}

	f, err := uc.compactor.Build(ctx, symbol, domrepo.NormalizeTimeframe(req.Timeframe), req.NewsDays, req.DetailLevel)
	if err != nil {
		return nil, err
	}

	userPrompt, err := analysis.UserPrompt(analysis.PromptInputs{
		UserQuery:   req.UserQuery,
		Objective:   req.Objective,
		DetailLevel: req.DetailLevel,
		Timeframe:   req.Timeframe,
	}, f)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp := &models.AnalysisResponse{PromptChars: utf8.RuneCountInString(userPrompt)}
	outcome, class := models.OutcomeSuccess, ""

	out, err := uc.orch.Run(ctx, analysis.Task{
		Ticker:       symbol,
		Facts:        f,
		SystemPrompt: analysis.SystemPrompt(),
		UserPrompt:   userPrompt,
	})
	var result *models.AnalysisResult
	switch {
	case err == nil:
		result = out.Result
		resp.Tokens = out.Usage
		resp.Latency = out.Latency.Milliseconds()
		resp.RepairAttempted = out.Repaired
		if out.Repaired {
			outcome = models.OutcomeRepaired
		}
	case ctx.Err() != nil:
		return nil, fmt.Errorf("analysis for %s: %w", symbol, ctx.Err())
	default:
		result = analysis.Fallback(f, uc.now())
		resp.Fallback = true
		resp.Failure = failureSummary(err)
		outcome, class = models.OutcomeFallback, resp.Failure.Classification
		if fl, ok := analysis.AsFailure(err); ok {
			resp.Latency = fl.Details.LatencyMs
			resp.RepairAttempted = fl.Details.Attempts > 1
		}
		log.Warn("analysis.fallback", xlogger.String("classification", class))
	}

	resp.AIAnalysis = uc.withSideData(ctx, log, symbol, result)

	if !resp.Fallback {
		if err := uc.cache.Set(ctx, key, resp, uc.cacheTTL); err != nil {
			log.Warn("analysis.cache_set_failed", xlogger.Error(err))
		}
	}

	uc.mergeNextActions(ctx, log, req.UserID, symbol, result)
	uc.finish(ctx, log, req, symbol, resp, outcome, class, start)
	return resp, nil
}

// mergeNextActions gives a stored checklist precedence over the model's and
// seeds the store from the model when the user has none yet.
func (uc *AnalysisUseCase) mergeNextActions(ctx context.Context, log *xlogger.Logger, userID, symbol string, r *models.AnalysisResult) {
	if userID == "" {
		return
	}
	stored, ok, err := uc.actions.Get(ctx, userID, symbol)
	if err != nil {
		log.Warn("analysis.next_actions_get_failed", xlogger.Error(err))
		return
	}
	if ok {
		r.NextActions = stored
		return
	}
	if len(r.NextActions) > 0 {
		if err := uc.actions.Put(ctx, userID, symbol, r.NextActions); err != nil {
			log.Warn("analysis.next_actions_seed_failed", xlogger.Error(err))
		}
	}
}

// withSideData attaches quote, profile, fundamentals and analyst payloads.
// Each one is optional and falls back to {}.
func (uc *AnalysisUseCase) withSideData(ctx context.Context, log *xlogger.Logger, symbol string, r *models.AnalysisResult) models.AnalysisEnvelope {
	env := models.NewAnalysisEnvelope(r)
	start := time.Now()

	var g errgroup.Group
	side := func(name string, dst *json.RawMessage, fetch func() (json.RawMessage, error)) {
		g.Go(func() error {
			raw, err := fetch()
			if err != nil {
				log.Warn("analysis.side_data_failed", xlogger.String("part", name), xlogger.Error(err))
				return nil
			}
			if len(raw) > 0 {
				*dst = raw
			}
			return nil
		})
	}
	side("quote", &env.Quote, func() (json.RawMessage, error) {
		q, err := uc.md.Quote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return q.Raw, nil
	})
	side("profile", &env.Profile, func() (json.RawMessage, error) {
		p, err := uc.md.Profile(ctx, symbol)
		return json.RawMessage(p), err
	})
	side("fundamentals", &env.Fundamentals, func() (json.RawMessage, error) {
		f, err := uc.md.Fundamentals(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return f.Raw, nil
	})
	side("analyst", &env.Analyst, func() (json.RawMessage, error) {
		a, err := uc.md.Analyst(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return a.Raw, nil
	})
	_ = g.Wait()

	log.Debug("analysis.side_ok", xlogger.Duration("took", time.Since(start)))
	return env
}

func (uc *AnalysisUseCase) finish(ctx context.Context, log *xlogger.Logger, req *models.AnalysisRequest, symbol string, resp *models.AnalysisResponse, outcome, class string, start time.Time) {
	took := uc.now().Sub(start)
	uc.metrics.RecordAnalysis(outcome)
	uc.metrics.RecordLatency("analysis_request", took.Seconds())

	ev := &models.AnalysisEvent{
		Ticker:         symbol,
		UserID:         req.UserID,
		Outcome:        outcome,
		Classification: class,
		Repaired:       resp.RepairAttempted && !resp.Fallback,
		Fallback:       resp.Fallback,
		Cached:         resp.Cached,
		LatencyMs:      took.Milliseconds(),
		Tokens:         resp.Tokens.TotalTokens,
		PromptChars:    resp.PromptChars,
		At:             uc.now().UTC(),
	}
	if err := uc.events.PublishAnalysis(ctx, ev); err != nil {
		log.Warn("analysis.event_publish_failed", xlogger.Error(err))
	}
	log.Info("analysis.response_ok",
		xlogger.String("outcome", outcome),
		xlogger.Int64("took_ms", took.Milliseconds()),
	)
}

func failureSummary(err error) *models.FailureSummary {
	fl, ok := analysis.AsFailure(err)
	if !ok {
		return &models.FailureSummary{Classification: string(analysis.ClassUpstreamError), Message: err.Error()}
	}
	s := &models.FailureSummary{Classification: string(fl.Classification), Message: fl.Message}
	if len(fl.Details.Issues) > 0 {
		s.Issues = validation.Messages(fl.Details.Issues)
	}
	return s
}
