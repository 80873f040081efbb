package storage

import (
	"context"
	"errors"

	"financeflow/internal/core"
)

// ErrConflict is returned when a guarded write finds the row changed since
// it was read.
var ErrConflict = errors.New("concurrent modification")

// Query narrows a listing. An empty Owner matches every owner; a zero
// Window matches every date.
type Query struct {
	Owner  string
	Window core.Window
	Type   core.TransactionType
	LoanID string
}

// HasWindow reports whether q bounds dates.
func (q Query) HasWindow() bool {
	return !q.Window.Start.IsZero() || !q.Window.End.IsZero()
}

// Ports used by the services. Every method is scoped by owner where the
// entity has one.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		ListTransactions(ctx context.Context, q Query) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, owner, id string) error
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		ListBudgets(ctx context.Context, owner string) ([]core.Budget, error)
		DeleteBudget(ctx context.Context, owner, id string) error
		// ListBudgetOwners returns every owner with at least one budget.
		ListBudgetOwners(ctx context.Context) ([]string, error)
	}

	BillStore interface {
		CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
		GetBill(ctx context.Context, owner, id string) (core.Bill, error)
		ListBills(ctx context.Context, owner string) ([]core.Bill, error)
		// ListPaidBills returns bills whose paid_at falls inside q.Window.
		ListPaidBills(ctx context.Context, q Query) ([]core.Bill, error)
		// PayBill moves a bill from prev to b and stores the synthesized
		// expense in one transaction. It fails with ErrConflict when the
		// stored due date no longer matches prev.
		PayBill(ctx context.Context, prev, b core.Bill, expense core.Transaction) (core.Bill, core.Transaction, error)
		DeleteBill(ctx context.Context, owner, id string) error
	}

	LoanStore interface {
		CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error)
		GetLoan(ctx context.Context, owner, id string) (core.Loan, error)
		ListLoans(ctx context.Context, owner string) ([]core.Loan, error)
		ListLoanPayments(ctx context.Context, q Query) ([]core.LoanPayment, error)
		// RecordLoanPayment appends p and moves the loan from prev to next
		// atomically. It fails with ErrConflict when the stored loan no
		// longer matches prev.
		RecordLoanPayment(ctx context.Context, prev, next core.Loan, p core.LoanPayment) (core.LoanPayment, error)
	}

	HoldingStore interface {
		CreateAssetLiability(ctx context.Context, a core.AssetLiability) (core.AssetLiability, error)
		ListAssetsLiabilities(ctx context.Context, owner string) ([]core.AssetLiability, error)
		DeleteAssetLiability(ctx context.Context, owner, id string) error
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		ListAccounts(ctx context.Context, owner string) ([]core.Account, error)
	}

	ProfileStore interface {
		UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error)
		GetProfile(ctx context.Context, id string) (core.Profile, error)
		ListProfiles(ctx context.Context) ([]core.Profile, error)
	}

	AlertStore interface {
		// CreateAlert stores a. It returns false without error when an
		// alert for the same owner, category and period already exists.
		CreateAlert(ctx context.Context, a core.BudgetAlert) (bool, error)
		ListAlerts(ctx context.Context, owner string) ([]core.BudgetAlert, error)
	}

	// Store is everything a backend provides.
	Store interface {
		TransactionStore
		BudgetStore
		BillStore
		LoanStore
		HoldingStore
		ProfileStore
		AlertStore
		Ping(ctx context.Context) error
		Close() error
	}
)
