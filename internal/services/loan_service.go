package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/loan"
	"financeflow/internal/storage"
)

// LoanService manages loans and their repayments.
type LoanService struct {
	store      storage.Store
	onSpend    SpendHook
	invalidate func(owner string)
	now        func() time.Time
}

func NewLoanService(store storage.Store, onSpend SpendHook, invalidate func(owner string)) *LoanService {
	return &LoanService{store: store, onSpend: onSpend, invalidate: invalidate, now: time.Now}
}

// Create derives the installment from principal, rate and tenure and
// stores the loan as active with the full principal outstanding.
func (s *LoanService) Create(ctx context.Context, l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	emi := loan.ComputeEMI(l.PrincipalAmount, l.InterestRate, l.TenureMonths)
	l.EMIAmount = emi.Installment
	l.OutstandingBalance = l.PrincipalAmount
	l.Status = core.LoanActive
	saved, err := s.store.CreateLoan(ctx, l)
	if err != nil {
		return core.Loan{}, fmt.Errorf("save loan: %w", err)
	}
	if s.invalidate != nil {
		s.invalidate(saved.Owner)
	}
	return saved, nil
}

func (s *LoanService) List(ctx context.Context, owner string) ([]core.Loan, error) {
	return s.store.ListLoans(ctx, owner)
}

// PaymentRequest is a repayment against one loan. A zero Date means today.
type PaymentRequest struct {
	Owner  string
	LoanID string
	Amount decimal.Decimal
	Date   core.Date
	Notes  string
}

// RecordPayment splits the payment into interest and principal, lowers the
// outstanding balance and closes the loan when it reaches zero. Closed and
// defaulted loans reject payments with core.ErrLoanNotActive. A concurrent
// payment on the same loan fails with storage.ErrConflict.
func (s *LoanService) RecordPayment(ctx context.Context, req PaymentRequest) (core.LoanPayment, core.Loan, error) {
	if req.Date.IsEmpty() {
		req.Date = core.DateOf(s.now())
	}
	p := core.LoanPayment{
		Owner:       req.Owner,
		LoanID:      req.LoanID,
		PaymentDate: req.Date,
		Amount:      req.Amount,
		Status:      core.PaymentCompleted,
		Notes:       req.Notes,
	}
	if err := p.Validate(); err != nil {
		return core.LoanPayment{}, core.Loan{}, err
	}

	current, err := s.store.GetLoan(ctx, req.Owner, req.LoanID)
	if err != nil {
		return core.LoanPayment{}, core.Loan{}, err
	}
	next, split, err := loan.ApplyPayment(current, req.Amount)
	if err != nil {
		return core.LoanPayment{}, core.Loan{}, err
	}
	p.InterestPaid = split.InterestPaid
	p.PrincipalPaid = split.PrincipalPaid
	p.Currency = current.Currency

	saved, err := s.store.RecordLoanPayment(ctx, current, next, p)
	if err != nil {
		return core.LoanPayment{}, core.Loan{}, fmt.Errorf("record loan payment: %w", err)
	}
	if s.onSpend != nil {
		s.onSpend(ctx, req.Owner)
	}
	return saved, next, nil
}

// Payments lists the repayments of one loan, newest first.
func (s *LoanService) Payments(ctx context.Context, owner, loanID string) ([]core.LoanPayment, error) {
	if _, err := s.store.GetLoan(ctx, owner, loanID); err != nil {
		return nil, err
	}
	return s.store.ListLoanPayments(ctx, storage.Query{Owner: owner, LoanID: loanID})
}

// Schedule lays out the full amortization table of a stored loan.
func (s *LoanService) Schedule(ctx context.Context, owner, id string) ([]loan.Row, error) {
	l, err := s.store.GetLoan(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return loan.Schedule(l.PrincipalAmount, l.InterestRate, l.TenureMonths), nil
}
