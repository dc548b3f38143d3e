package usecase

import (
	"context"
	"fmt"

	"TrueSignal/internal/domain/models"
	domrepo "TrueSignal/internal/domain/repository"
	"TrueSignal/internal/services/news"
)

type NewsUseCase struct {
	md domrepo.MarketData
}

func NewNewsUseCase(md domrepo.MarketData) *NewsUseCase {
	return &NewsUseCase{md: md}
}

// Digest fetches up to news.MaxInput articles and summarizes them.
func (uc *NewsUseCase) Digest(ctx context.Context, symbol string) (*models.NewsDigestResponse, error) {
	items, err := uc.md.News(ctx, symbol, news.MaxInput)
	if err != nil {
		return nil, fmt.Errorf("news for %s: %w", symbol, err)
	}
	return &models.NewsDigestResponse{Ticker: symbol, NewsDigest: news.Summarize(items)}, nil
}
