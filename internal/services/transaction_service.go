package services

import (
	"context"
	"fmt"
	"time"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

// TransactionService records income, expenses and budgets.
type TransactionService struct {
	store   storage.Store
	onSpend SpendHook
	now     func() time.Time
}

func NewTransactionService(store storage.Store, onSpend SpendHook) *TransactionService {
	return &TransactionService{store: store, onSpend: onSpend, now: time.Now}
}

// Create validates and stores t. Expenses trigger a budget re-evaluation.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(s.now()); err != nil {
		return core.Transaction{}, err
	}
	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.changed(ctx, saved.Owner)
	return saved, nil
}

// List returns owner's transactions, newest first. A zero window lists all.
func (s *TransactionService) List(ctx context.Context, owner string, w core.Window, typ core.TransactionType) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, storage.Query{Owner: owner, Window: w, Type: typ})
}

func (s *TransactionService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		return err
	}
	s.changed(ctx, owner)
	return nil
}

func (s *TransactionService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.changed(ctx, saved.Owner)
	return saved, nil
}

func (s *TransactionService) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, owner)
}

func (s *TransactionService) DeleteBudget(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteBudget(ctx, owner, id); err != nil {
		return err
	}
	s.changed(ctx, owner)
	return nil
}

func (s *TransactionService) changed(ctx context.Context, owner string) {
	if s.onSpend != nil {
		s.onSpend(ctx, owner)
	}
}
