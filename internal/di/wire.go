//go:build wireinject
// +build wireinject

package di

import (
	"TrueSignal/internal/handler/api"
	"TrueSignal/internal/usecase"
	"TrueSignal/pkg/config"
	"TrueSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes caches, Redis and the event publisher.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideAnalysisCache,
		ProvideNextActionsStore,
		ProvideEventPublisher,
		ProvideMarketData,
		ProvideGenerator,
		ProvideIDGenerator,

		// Services
		ProvideCompactor,
		ProvideOrchestrator,

		// Use cases
		ProvideAnalysisUseCase,
		usecase.NewFactsUseCase,
		usecase.NewNewsUseCase,
		usecase.NewNextActionsUseCase,

		// HTTP
		api.NewAnalysisEchoHandler,
		api.NewNextActionsEchoHandler,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
