package services

import (
	"context"
	"log/slog"
	"time"

	"financeflow/internal/currency"
	"financeflow/internal/storage"
)

// Options tunes the services built by New.
type Options struct {
	AlertThresholdPercent float64
	DisplayCurrency       currency.Code
	ReportCacheTTL        time.Duration
}

// Services bundles every service over one store.
type Services struct {
	Finance      *FinanceService
	Transactions *TransactionService
	Bills        *BillService
	Loans        *LoanService
	Holdings     *HoldingService
	Profiles     *ProfileService
	Alerts       *AlertService
}

// New wires the services. publisher may be nil.
func New(store storage.Store, publisher Publisher, opts Options) *Services {
	finance := NewFinanceService(store, opts.AlertThresholdPercent, opts.ReportCacheTTL)
	alerts := NewAlertService(store, publisher, opts.AlertThresholdPercent, opts.DisplayCurrency)
	hook := spendChanged(finance, alerts)
	return &Services{
		Finance:      finance,
		Transactions: NewTransactionService(store, hook),
		Bills:        NewBillService(store, publisher, hook, finance.Invalidate),
		Loans:        NewLoanService(store, hook, finance.Invalidate),
		Holdings:     NewHoldingService(store, finance.Invalidate),
		Profiles:     NewProfileService(store),
		Alerts:       alerts,
	}
}

// SpendHook runs after a write that changes an owner's spend.
type SpendHook func(ctx context.Context, owner string)

// spendChanged drops stale reports and re-evaluates budgets. Alert
// failures are logged; the write that triggered them already succeeded.
func spendChanged(finance *FinanceService, alerts *AlertService) SpendHook {
	return func(ctx context.Context, owner string) {
		finance.Invalidate(owner)
		if _, err := alerts.CheckOwner(ctx, owner); err != nil {
			slog.ErrorContext(ctx, "Budget alert check failed", "user_id", owner, "error", err)
		}
	}
}
