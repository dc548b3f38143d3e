package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrueSignal/internal/domain/models"
	drepo "TrueSignal/internal/domain/repository"
	"TrueSignal/pkg/cache"
	"TrueSignal/pkg/util"
)

const nextActionsKeyPrefix = "nextactions"

// NextActionsStore keeps each user's checklist for a ticker in a cache
// backend. Redis in production, memory in dev and tests.
type NextActionsStore struct {
	backend cache.Service
	ttl     time.Duration
}

// NewNextActionsStore creates a store. A zero ttl keeps entries until the
// backend evicts them.
func NewNextActionsStore(backend cache.Service, ttl time.Duration) *NextActionsStore {
	return &NextActionsStore{backend: backend, ttl: ttl}
}

var _ drepo.NextActionsStore = (*NextActionsStore)(nil)

func (s *NextActionsStore) Get(ctx context.Context, userID, ticker string) ([]models.NextAction, bool, error) {
	var actions []models.NextAction
	err := s.backend.Get(ctx, nextActionsKey(userID, ticker), &actions)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return []models.NextAction{}, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get next actions: %w", err)
	}
	if actions == nil {
		actions = []models.NextAction{}
	}
	return actions, true, nil
}

func (s *NextActionsStore) Put(ctx context.Context, userID, ticker string, actions []models.NextAction) error {
	if actions == nil {
		actions = []models.NextAction{}
	}
	if err := s.backend.Set(ctx, nextActionsKey(userID, ticker), actions, s.ttl); err != nil {
		return fmt.Errorf("put next actions: %w", err)
	}
	return nil
}

// nextActionsKey hashes the user id to a fixed-width segment, so a ':' in
// either part cannot make two (user, ticker) pairs share a key.
func nextActionsKey(userID, ticker string) string {
	return cache.GenerateKey(nextActionsKeyPrefix, cache.HashKey(userID)+":"+util.NormalizeSymbol(ticker))
}
