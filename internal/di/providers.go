package di

import (
	"context"
	"fmt"
	"time"

	"TrueSignal/internal/domain/repository"
	"TrueSignal/internal/handler/api"
	internalrepo "TrueSignal/internal/repository"
	"TrueSignal/internal/service/ids"
	"TrueSignal/internal/service/openai"
	"TrueSignal/internal/service/yahoo"
	"TrueSignal/internal/services/analysis"
	"TrueSignal/internal/services/facts"
	"TrueSignal/internal/usecase"
	"TrueSignal/pkg/cache"
	"TrueSignal/pkg/config"
	xhttp "TrueSignal/pkg/http"
	pkgkafka "TrueSignal/pkg/kafka"
	xlogger "TrueSignal/pkg/logger"
	"TrueSignal/pkg/metrics"
	"TrueSignal/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache connects to Redis when any backend needs it. It returns
// nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, func(), error) {
	if !cfg.UsesRedis() {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: 5,
		PoolTimeout:  30 * time.Second,
		Prefix:       cfg.Redis.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideAnalysisCache selects the response cache backend.
func ProvideAnalysisCache(cfg *config.Config, rc *cache.RedisCache) (cache.Service, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		return mc, func() { _ = mc.Close() }, nil
	case "redis":
		return rc, func() {}, nil
	case "layered":
		lc := cache.NewLayeredCache(rc, cache.WithL1(cfg.Cache.MemoryMaxSize, time.Minute))
		return lc, func() { _ = lc.Close() }, nil
	case "none":
		return cache.Noop{}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// ProvideNextActionsStore keeps checklists in Redis or, for development, in memory.
func ProvideNextActionsStore(cfg *config.Config, rc *cache.RedisCache) (repository.NextActionsStore, func(), error) {
	switch cfg.NextActions.Backend {
	case "redis":
		return internalrepo.NewNextActionsStore(rc, cfg.NextActions.TTL), func() {}, nil
	case "memory":
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(100_000))
		return internalrepo.NewNextActionsStore(mc, cfg.NextActions.TTL), func() { _ = mc.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown next_actions backend %q", cfg.NextActions.Backend)
}

// ProvideEventPublisher publishes analysis events to Kafka when enabled.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopEventPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		RequiredAcks: cfg.Kafka.RequiredAcks,
		Compression:  cfg.Kafka.Compression,
		MaxAttempts:  cfg.Kafka.Producer.MaxAttempts,
		WriteTimeout: cfg.Kafka.Producer.WriteTimeout,
		ReadTimeout:  cfg.Kafka.Producer.ReadTimeout,
		BatchSize:    cfg.Kafka.Producer.BatchSize,
		BatchBytes:   cfg.Kafka.Producer.BatchBytes,
		Linger:       cfg.Kafka.Producer.Linger,
		Async:        cfg.Kafka.Producer.Async,
		HashByKey:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideMarketData creates the Yahoo market-data client.
func ProvideMarketData(cfg *config.Config, logger *xlogger.Logger) repository.MarketData {
	return yahoo.New(cfg.MarketData.BaseURL, cfg.MarketData.Timeout, yahoo.WithLogger(logger))
}

// ProvideGenerator creates the OpenAI completion client.
func ProvideGenerator(cfg *config.Config, logger *xlogger.Logger) repository.Generator {
	return openai.New(openai.Config{
		APIKey:           cfg.OpenAI.APIKey,
		BaseURL:          cfg.OpenAI.BaseURL,
		Model:            cfg.OpenAI.Model,
		Timeout:          cfg.OpenAI.Timeout,
		MaxTokens:        cfg.OpenAI.MaxTokens,
		Temperature:      cfg.OpenAI.Temperature,
		RetryTemperature: cfg.OpenAI.RetryTemperature,
	}, logger)
}

func ProvideIDGenerator() repository.IDGenerator {
	return ids.NewUUIDGenerator()
}

func ProvideCompactor(cfg *config.Config, md repository.MarketData, m repository.Metrics, logger *xlogger.Logger) *facts.Compactor {
	return facts.NewCompactor(md, m, logger, facts.Config{
		BudgetLowBytes: cfg.Facts.BudgetLowBytes,
		BudgetStdBytes: cfg.Facts.BudgetStdBytes,
		MinHistoryDays: cfg.Facts.MinHistoryDays,
		NewsArticles:   cfg.MarketData.NewsArticles,
	})
}

func ProvideOrchestrator(gen repository.Generator, idGen repository.IDGenerator, m repository.Metrics, logger *xlogger.Logger) *analysis.Orchestrator {
	return analysis.NewOrchestrator(gen, idGen, m, logger)
}

func ProvideAnalysisUseCase(
	cfg *config.Config,
	md repository.MarketData,
	compactor *facts.Compactor,
	orch *analysis.Orchestrator,
	actions repository.NextActionsStore,
	events repository.EventPublisher,
	c cache.Service,
	m repository.Metrics,
	logger *xlogger.Logger,
) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(md, compactor, orch, actions, events, c, cfg.Cache.TTL, m, logger)
}

// ProvideHTTPHandler groups every route set served by the API.
func ProvideHTTPHandler(analysisH *api.AnalysisEchoHandler, actionsH *api.NextActionsEchoHandler) xhttp.Handler {
	return xhttp.Handlers{analysisH, actionsH}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, logger *xlogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithRateLimit(cfg.Server.RateLimitRPM),
		xhttp.WithLogger(logger),
	}
	if cfg.Server.FrontendOrigin != "" {
		opts = append(opts, xhttp.WithAllowOrigins(cfg.Server.FrontendOrigin))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, logger *xlogger.Logger) *server.App {
	return server.New(cfg, srv, logger)
}
