package usecase

import (
	"context"
	"fmt"

	"TrueSignal/internal/domain/models"
	domrepo "TrueSignal/internal/domain/repository"
)

// NextActionsUseCase manages a user's per-ticker checklist.
type NextActionsUseCase struct {
	store domrepo.NextActionsStore
	ids   domrepo.IDGenerator
}

func NewNextActionsUseCase(store domrepo.NextActionsStore, ids domrepo.IDGenerator) *NextActionsUseCase {
	return &NextActionsUseCase{store: store, ids: ids}
}

// List returns the checklist, empty when the user has none.
func (uc *NextActionsUseCase) List(ctx context.Context, key models.NextActionsKey) ([]models.NextAction, error) {
	actions, _, err := uc.store.Get(ctx, key.UserID, key.Ticker)
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// Replace overwrites the checklist.
func (uc *NextActionsUseCase) Replace(ctx context.Context, key models.NextActionsKey, actions []models.NextAction) ([]models.NextAction, error) {
	if err := uc.store.Put(ctx, key.UserID, key.Ticker, actions); err != nil {
		return nil, err
	}
	return actions, nil
}

// Add appends an unchecked item with a fresh id.
func (uc *NextActionsUseCase) Add(ctx context.Context, key models.NextActionsKey, label string) ([]models.NextAction, error) {
	actions, _, err := uc.store.Get(ctx, key.UserID, key.Ticker)
	if err != nil {
		return nil, err
	}
	actions = append(actions, models.NextAction{ID: uc.ids.NewID(), Label: label})
	if err := uc.store.Put(ctx, key.UserID, key.Ticker, actions); err != nil {
		return nil, fmt.Errorf("add next action: %w", err)
	}
	return actions, nil
}

// Remove drops the item with id. Removing from a missing list is a no-op.
func (uc *NextActionsUseCase) Remove(ctx context.Context, key models.NextActionsKey, id string) ([]models.NextAction, error) {
	actions, ok, err := uc.store.Get(ctx, key.UserID, key.Ticker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.NextAction{}, nil
	}
	kept := make([]models.NextAction, 0, len(actions))
	for _, a := range actions {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if err := uc.store.Put(ctx, key.UserID, key.Ticker, kept); err != nil {
		return nil, fmt.Errorf("remove next action: %w", err)
	}
	return kept, nil
}
