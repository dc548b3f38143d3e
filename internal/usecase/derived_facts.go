package usecase

import (
	"context"

	"TrueSignal/internal/domain/models"
	domrepo "TrueSignal/internal/domain/repository"
	"TrueSignal/internal/services/facts"
)

// FactsUseCase exposes the compacted facts record on its own.
type FactsUseCase struct {
	compactor *facts.Compactor
}

func NewFactsUseCase(compactor *facts.Compactor) *FactsUseCase {
	return &FactsUseCase{compactor: compactor}
}

// Derived builds facts for the ticker as given; no symbol search is done.
func (uc *FactsUseCase) Derived(ctx context.Context, req *models.DerivedFactsRequest) (*models.Facts, error) {
	return uc.compactor.Build(ctx, req.Ticker, domrepo.NormalizeTimeframe(req.Timeframe), req.NewsDays, req.DetailLevel)
}
