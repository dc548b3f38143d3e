package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domrepo "TrueSignal/internal/domain/repository"
)

// ErrTickerNotFound is returned when symbol search has no hit.
var ErrTickerNotFound = errors.New("no matching company or ticker found")

// resolveSymbol maps free-form ticker text to the first search hit.
func resolveSymbol(ctx context.Context, md domrepo.MarketData, query string) (string, error) {
	hits, err := md.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", query, err)
	}
	if len(hits) == 0 || strings.TrimSpace(hits[0].Symbol) == "" {
		return "", fmt.Errorf("resolve %q: %w", query, ErrTickerNotFound)
	}
	return hits[0].Symbol, nil
}
