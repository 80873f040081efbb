// Package memory is an in-process storage.Store used for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	txns     []core.Transaction
	budgets  []core.Budget
	bills    []core.Bill
	loans    []core.Loan
	payments []core.LoanPayment
	holdings []core.AssetLiability
	accounts []core.Account
	profiles map[string]core.Profile
	alerts   []core.BudgetAlert
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now, profiles: map[string]core.Profile{}}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = s.now().UTC()
	}
}

func inWindow(q storage.Query, t time.Time) bool {
	return !q.HasWindow() || q.Window.Contains(t)
}

// removeOwned deletes the first element matching owner and id.
func removeOwned[T any](items []T, match func(T) bool) ([]T, error) {
	for i, it := range items {
		if match(it) {
			return append(items[:i], items[i+1:]...), nil
		}
	}
	return items, core.ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&t.ID, &t.CreatedAt)
	s.txns = append(s.txns, t)
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, q storage.Query) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txns {
		if q.Owner != "" && t.Owner != q.Owner {
			continue
		}
		if q.Type != "" && t.Type != q.Type {
			continue
		}
		if !inWindow(q, t.Date.Time) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.txns, err = removeOwned(s.txns, func(t core.Transaction) bool { return t.ID == id && t.Owner == owner })
	return err
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&b.ID, &b.CreatedAt)
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, owner string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.Owner == owner {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.budgets, err = removeOwned(s.budgets, func(b core.Budget) bool { return b.ID == id && b.Owner == owner })
	return err
}

func (s *Store) ListBudgetOwners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, b := range s.budgets {
		if _, ok := seen[b.Owner]; ok {
			continue
		}
		seen[b.Owner] = struct{}{}
		out = append(out, b.Owner)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&b.ID, &b.CreatedAt)
	s.bills = append(s.bills, b)
	return b, nil
}

func (s *Store) GetBill(_ context.Context, owner, id string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bills {
		if b.ID == id && b.Owner == owner {
			return b, nil
		}
	}
	return core.Bill{}, core.ErrNotFound
}

func (s *Store) ListBills(_ context.Context, owner string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, b := range s.bills {
		if b.Owner == owner {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate.Time) })
	return out, nil
}

func (s *Store) ListPaidBills(_ context.Context, q storage.Query) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, b := range s.bills {
		if b.PaidAt == nil || (q.Owner != "" && b.Owner != q.Owner) || !inWindow(q, *b.PaidAt) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidAt.After(*out[j].PaidAt) })
	return out, nil
}

func (s *Store) PayBill(_ context.Context, prev, b core.Bill, expense core.Transaction) (core.Bill, core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == prev.ID && s.bills[i].Owner == prev.Owner {
			if !s.bills[i].DueDate.Equal(prev.DueDate.Time) {
				return core.Bill{}, core.Transaction{}, storage.ErrConflict
			}
			s.stamp(&expense.ID, &expense.CreatedAt)
			s.bills[i].DueDate = b.DueDate
			s.bills[i].IsPaid = b.IsPaid
			s.bills[i].PaidAt = b.PaidAt
			s.txns = append(s.txns, expense)
			return s.bills[i], expense, nil
		}
	}
	return core.Bill{}, core.Transaction{}, core.ErrNotFound
}

func (s *Store) DeleteBill(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.bills, err = removeOwned(s.bills, func(b core.Bill) bool { return b.ID == id && b.Owner == owner })
	return err
}

func (s *Store) CreateLoan(_ context.Context, l core.Loan) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&l.ID, &l.CreatedAt)
	s.loans = append(s.loans, l)
	return l, nil
}

func (s *Store) GetLoan(_ context.Context, owner, id string) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loans {
		if l.ID == id && l.Owner == owner {
			return l, nil
		}
	}
	return core.Loan{}, core.ErrNotFound
}

func (s *Store) ListLoans(_ context.Context, owner string) ([]core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Loan
	for _, l := range s.loans {
		if l.Owner == owner {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListLoanPayments(_ context.Context, q storage.Query) ([]core.LoanPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.LoanPayment
	for _, p := range s.payments {
		if q.Owner != "" && p.Owner != q.Owner {
			continue
		}
		if q.LoanID != "" && p.LoanID != q.LoanID {
			continue
		}
		if !inWindow(q, p.PaymentDate.Time) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate.Time) })
	return out, nil
}

func (s *Store) RecordLoanPayment(_ context.Context, prev, next core.Loan, p core.LoanPayment) (core.LoanPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.loans {
		cur := &s.loans[i]
		if cur.ID != prev.ID || cur.Owner != prev.Owner {
			continue
		}
		if cur.Status != prev.Status || !cur.OutstandingBalance.Equal(prev.OutstandingBalance) {
			return core.LoanPayment{}, storage.ErrConflict
		}
		cur.OutstandingBalance = next.OutstandingBalance
		cur.Status = next.Status
		s.stamp(&p.ID, &p.CreatedAt)
		s.payments = append(s.payments, p)
		return p, nil
	}
	return core.LoanPayment{}, core.ErrNotFound
}

func (s *Store) CreateAssetLiability(_ context.Context, a core.AssetLiability) (core.AssetLiability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&a.ID, &a.CreatedAt)
	s.holdings = append(s.holdings, a)
	return a, nil
}

func (s *Store) ListAssetsLiabilities(_ context.Context, owner string) ([]core.AssetLiability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.AssetLiability
	for _, a := range s.holdings {
		if a.Owner == owner {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) DeleteAssetLiability(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.holdings, err = removeOwned(s.holdings, func(a core.AssetLiability) bool { return a.ID == id && a.Owner == owner })
	return err
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&a.ID, &a.CreatedAt)
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, owner string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.Owner == owner {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) UpsertProfile(_ context.Context, p core.Profile) (core.Profile, error) {
	if p.ID == "" {
		return core.Profile{}, core.ErrEmptyOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.profiles[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return core.Profile{}, core.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProfiles(_ context.Context) ([]core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateAlert(_ context.Context, a core.BudgetAlert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, old := range s.alerts {
		if old.Owner == a.Owner && old.Category == a.Category && old.PeriodStart.Equal(a.PeriodStart.Time) {
			return false, nil
		}
	}
	s.stamp(&a.ID, &a.CreatedAt)
	s.alerts = append(s.alerts, a)
	return true, nil
}

func (s *Store) ListAlerts(_ context.Context, owner string) ([]core.BudgetAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.BudgetAlert
	for _, a := range s.alerts {
		if a.Owner == owner {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
