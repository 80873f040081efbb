package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{SQLite, "a = ? AND b = ?", "a = ? AND b = ?"},
		{Postgres, "a = ? AND b = ?", "a = $1 AND b = $2"},
		{Postgres, "no params", "no params"},
	}
	for _, tt := range tests {
		if got := tt.dialect.rebind(tt.in); got != tt.want {
			t.Errorf("%s rebind(%q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}

func TestTransactionsRoundTripAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	seed := []core.Transaction{
		{Owner: "u1", Type: core.Expense, Category: "Food", Description: "lunch", Amount: core.NewMoney(dec("12.50"), currency.EUR), Date: core.NewDate(2024, 3, 10)},
		{Owner: "u1", Type: core.Income, Category: "Salary", Description: "pay", Amount: core.NewMoney(dec("3000"), currency.USD), Date: core.NewDate(2024, 3, 1)},
		{Owner: "u1", Type: core.Expense, Category: "Food", Description: "old", Amount: core.NewMoney(dec("5"), currency.USD), Date: core.NewDate(2024, 2, 28)},
		{Owner: "u2", Type: core.Expense, Category: "Food", Description: "other", Amount: core.NewMoney(dec("7"), currency.USD), Date: core.NewDate(2024, 3, 5)},
	}
	for _, tx := range seed {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	march := core.MonthWindow(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	got, err := repo.ListTransactions(ctx, Query{Owner: "u1", Window: march})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].Description != "lunch" {
		t.Errorf("first = %q, want newest date first", got[0].Description)
	}
	if !got[0].Amount.Amount.Equal(dec("12.5")) || got[0].Amount.Currency != currency.EUR {
		t.Errorf("amount = %v %s", got[0].Amount.Amount, got[0].Amount.Currency)
	}

	expenses, err := repo.ListTransactions(ctx, Query{Owner: "u1", Type: core.Expense})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("got %d expenses, want 2", len(expenses))
	}

	all, err := repo.ListTransactions(ctx, Query{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d transactions across owners, want 4", len(all))
	}
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		Owner: "u1", Type: core.Expense, Category: "Food", Description: "x",
		Amount: core.NewMoney(dec("1"), currency.USD), Date: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u2", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete by other owner = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", tx.ID); err != nil {
		t.Errorf("delete by owner: %v", err)
	}
}

func TestPayBillIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	bill, err := repo.CreateBill(ctx, core.Bill{
		Owner: "u1", Name: "Rent", Amount: core.NewMoney(dec("900"), currency.USD), Category: "Housing",
		DueDate: core.NewDate(2024, 3, 1), Frequency: core.Monthly, ReminderDays: 3, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	paidAt := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	prev := bill
	bill.DueDate = core.NewDate(2024, 4, 1)
	bill.PaidAt = &paidAt
	expense := core.Transaction{
		Owner: "u1", Type: core.Expense, Category: "Housing", Description: "Bill payment: Rent",
		Amount: bill.Amount, Date: core.DateOf(paidAt), BillID: bill.ID,
	}
	if _, _, err := repo.PayBill(ctx, prev, bill, expense); err != nil {
		t.Fatalf("pay: %v", err)
	}

	// A second writer that read the bill before the first payment loses
	if _, _, err := repo.PayBill(ctx, prev, bill, expense); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale pay = %v, want ErrConflict", err)
	}

	stored, err := repo.GetBill(ctx, "u1", bill.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if stored.DueDate.String() != "2024-04-01" || stored.PaidAt == nil || !stored.PaidAt.Equal(paidAt) {
		t.Errorf("stored bill = due %s paid %v", stored.DueDate, stored.PaidAt)
	}

	paid, err := repo.ListPaidBills(ctx, Query{Owner: "u1", Window: core.MonthWindow(paidAt)})
	if err != nil || len(paid) != 1 {
		t.Fatalf("paid bills = %d, %v", len(paid), err)
	}
	txns, _ := repo.ListTransactions(ctx, Query{Owner: "u1"})
	if len(txns) != 1 || txns[0].BillID != bill.ID {
		t.Fatalf("expected one linked expense, got %+v", txns)
	}

	// Unknown bill rolls back the expense insert
	missing := bill
	missing.ID = "missing"
	if _, _, err := repo.PayBill(ctx, missing, missing, core.Transaction{
		Owner: "u1", Type: core.Expense, Category: "Housing", Description: "ghost",
		Amount: bill.Amount, Date: core.DateOf(paidAt),
	}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("pay missing bill = %v, want ErrNotFound", err)
	}
	txns, _ = repo.ListTransactions(ctx, Query{Owner: "u1"})
	if len(txns) != 1 {
		t.Errorf("got %d transactions after failed pay, want 1", len(txns))
	}
}

func TestRecordLoanPaymentGuardsBalance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	loan, err := repo.CreateLoan(ctx, core.Loan{
		Owner: "u1", Name: "Car", Type: "car", PrincipalAmount: dec("10000"), InterestRate: dec("6"),
		TenureMonths: 24, StartDate: core.NewDate(2024, 1, 1), DueDay: 5, EMIAmount: dec("443.21"),
		OutstandingBalance: dec("10000"), Status: core.LoanActive, Currency: currency.USD,
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	next := loan
	next.OutstandingBalance = dec("9606.79")
	payment := core.LoanPayment{
		Owner: "u1", LoanID: loan.ID, PaymentDate: core.NewDate(2024, 2, 5), Amount: dec("443.21"),
		PrincipalPaid: dec("393.21"), InterestPaid: dec("50"), Currency: currency.USD, Status: core.PaymentCompleted,
	}
	if _, err := repo.RecordLoanPayment(ctx, loan, next, payment); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	// A second writer holding the stale balance loses
	if _, err := repo.RecordLoanPayment(ctx, loan, next, payment); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale payment = %v, want ErrConflict", err)
	}

	stored, err := repo.GetLoan(ctx, "u1", loan.ID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if !stored.OutstandingBalance.Equal(dec("9606.79")) {
		t.Errorf("balance = %s, want 9606.79", stored.OutstandingBalance)
	}
	payments, err := repo.ListLoanPayments(ctx, Query{Owner: "u1", LoanID: loan.ID})
	if err != nil || len(payments) != 1 {
		t.Fatalf("payments = %d, %v", len(payments), err)
	}
	if !payments[0].InterestPaid.Equal(dec("50")) {
		t.Errorf("interest = %s", payments[0].InterestPaid)
	}
}

func TestGetLoanNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetLoan(context.Background(), "u1", "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateAlertDeduplicates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := core.BudgetAlert{
		Owner: "u1", Category: "Food", PeriodStart: core.NewDate(2024, 3, 1),
		Percentage: 85, Spent: dec("425"), Limit: dec("500"), Currency: currency.USD,
	}
	created, err := repo.CreateAlert(ctx, a)
	if err != nil || !created {
		t.Fatalf("first alert = %v, %v", created, err)
	}
	a.Percentage = 95
	created, err = repo.CreateAlert(ctx, a)
	if err != nil || created {
		t.Fatalf("duplicate alert = %v, %v", created, err)
	}

	alerts, err := repo.ListAlerts(ctx, "u1")
	if err != nil || len(alerts) != 1 {
		t.Fatalf("alerts = %d, %v", len(alerts), err)
	}
	if alerts[0].Percentage != 85 {
		t.Errorf("percentage = %v, want first alert kept", alerts[0].Percentage)
	}
}

func TestUpsertProfile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.UpsertProfile(ctx, core.Profile{ID: "u1", Email: "a@example.com", EmailAlertsEnabled: true}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	p, err := repo.UpsertProfile(ctx, core.Profile{ID: "u1", Email: "b@example.com"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Email != "b@example.com" || p.EmailAlertsEnabled {
		t.Errorf("profile = %+v", p)
	}
	all, _ := repo.ListProfiles(ctx)
	if len(all) != 1 {
		t.Errorf("profiles = %d, want 1", len(all))
	}
}

func TestBudgetOwnersAndHoldings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, owner := range []string{"u2", "u1", "u1"} {
		if _, err := repo.CreateBudget(ctx, core.Budget{
			Owner: owner, Category: "Food", Limit: core.NewMoney(dec("500"), currency.USD), Period: core.PeriodMonthly,
		}); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}
	owners, err := repo.ListBudgetOwners(ctx)
	if err != nil {
		t.Fatalf("owners: %v", err)
	}
	if len(owners) != 2 {
		t.Errorf("owners = %v, want 2 distinct", owners)
	}

	if _, err := repo.CreateAssetLiability(ctx, core.AssetLiability{
		Owner: "u1", Type: core.Asset, Name: "House", Value: core.NewMoney(dec("250000"), currency.EUR),
		Category: "Real Estate", Date: core.NewDate(2024, 1, 1),
	}); err != nil {
		t.Fatalf("create holding: %v", err)
	}
	holdings, err := repo.ListAssetsLiabilities(ctx, "u1")
	if err != nil || len(holdings) != 1 {
		t.Fatalf("holdings = %d, %v", len(holdings), err)
	}
	if holdings[0].Value.Currency != currency.EUR {
		t.Errorf("currency = %s", holdings[0].Value.Currency)
	}
}
