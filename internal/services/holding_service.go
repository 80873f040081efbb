package services

import (
	"context"
	"fmt"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

// HoldingService manages assets, liabilities and accounts.
type HoldingService struct {
	store      storage.Store
	invalidate func(owner string)
}

func NewHoldingService(store storage.Store, invalidate func(owner string)) *HoldingService {
	return &HoldingService{store: store, invalidate: invalidate}
}

func (s *HoldingService) Create(ctx context.Context, a core.AssetLiability) (core.AssetLiability, error) {
	if err := a.Validate(); err != nil {
		return core.AssetLiability{}, err
	}
	saved, err := s.store.CreateAssetLiability(ctx, a)
	if err != nil {
		return core.AssetLiability{}, fmt.Errorf("save asset/liability: %w", err)
	}
	if s.invalidate != nil {
		s.invalidate(saved.Owner)
	}
	return saved, nil
}

func (s *HoldingService) List(ctx context.Context, owner string) ([]core.AssetLiability, error) {
	return s.store.ListAssetsLiabilities(ctx, owner)
}

func (s *HoldingService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteAssetLiability(ctx, owner, id); err != nil {
		return err
	}
	if s.invalidate != nil {
		s.invalidate(owner)
	}
	return nil
}

func (s *HoldingService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	saved, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	return saved, nil
}

func (s *HoldingService) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, owner)
}
