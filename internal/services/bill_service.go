package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financeflow/internal/amqp"
	"financeflow/internal/core"
	"financeflow/internal/storage"
)

// ErrBillInactive is returned when paying a deactivated bill.
var ErrBillInactive = errors.New("bill is inactive")

// BillService manages recurring bills and their payment.
type BillService struct {
	store     storage.Store
	publisher Publisher
	onSpend   SpendHook
	// invalidate drops cached reports after writes that leave spend alone.
	invalidate func(owner string)
	now        func() time.Time
}

func NewBillService(store storage.Store, publisher Publisher, onSpend SpendHook, invalidate func(owner string)) *BillService {
	return &BillService{store: store, publisher: publisher, onSpend: onSpend, invalidate: invalidate, now: time.Now}
}

// Create stores a new bill. New bills start active and unpaid.
func (s *BillService) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	b.IsActive = true
	b.IsPaid = false
	b.PaidAt = nil
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	saved, err := s.store.CreateBill(ctx, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}
	if s.invalidate != nil {
		s.invalidate(saved.Owner)
	}
	return saved, nil
}

func (s *BillService) List(ctx context.Context, owner string) ([]core.Bill, error) {
	return s.store.ListBills(ctx, owner)
}

// Delete removes a bill. Paid bills count toward spend, so budgets are
// re-evaluated.
func (s *BillService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteBill(ctx, owner, id); err != nil {
		return err
	}
	if s.onSpend != nil {
		s.onSpend(ctx, owner)
	}
	return nil
}

// MarkPaid pays the current occurrence of a bill: the due date rolls to
// the next occurrence and an expense for the bill amount is recorded
// today. Both writes happen atomically. A concurrent payment of the same
// occurrence fails with storage.ErrConflict.
func (s *BillService) MarkPaid(ctx context.Context, owner, id string) (core.Bill, core.Transaction, error) {
	b, err := s.store.GetBill(ctx, owner, id)
	if err != nil {
		return core.Bill{}, core.Transaction{}, err
	}
	if !b.IsActive {
		return core.Bill{}, core.Transaction{}, ErrBillInactive
	}

	next, err := NextDueDate(b.DueDate, b.Frequency)
	if err != nil {
		return core.Bill{}, core.Transaction{}, err
	}
	now := s.now().UTC()
	prev := b
	b.DueDate = next
	b.IsPaid = false
	b.PaidAt = &now

	expense := core.Transaction{
		Owner:       owner,
		Type:        core.Expense,
		Category:    b.Category,
		Description: b.Name,
		Amount:      b.Amount,
		Date:        core.DateOf(now),
		BillID:      b.ID,
	}
	paid, tx, err := s.store.PayBill(ctx, prev, b, expense)
	if err != nil {
		return core.Bill{}, core.Transaction{}, fmt.Errorf("pay bill: %w", err)
	}
	if s.onSpend != nil {
		s.onSpend(ctx, owner)
	}
	return paid, tx, nil
}

// ScanReminders publishes a reminder for every bill due soon of every owner
// with alerts enabled. It returns the number of reminders sent.
func (s *BillService) ScanReminders(ctx context.Context) (int, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}
	now := s.now()
	sent := 0
	var errs []error
	for _, p := range profiles {
		if !p.EmailAlertsEnabled {
			continue
		}
		bills, err := s.store.ListBills(ctx, p.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("owner %s: list bills: %w", p.ID, err))
			continue
		}
		for _, b := range bills {
			if !IsDueSoon(b, now) {
				continue
			}
			days := DaysUntilDue(b, now)
			if s.publisher == nil {
				slog.InfoContext(ctx, "Bill due soon",
					"user_id", p.ID,
					"bill_id", b.ID,
					"name", b.Name,
					"days_until_due", days)
				sent++
				continue
			}
			if err := s.publisher.Publish(ctx, amqp.NewBillReminderMessage(b, p.Email, days)); err != nil {
				errs = append(errs, fmt.Errorf("bill %s: %w", b.ID, err))
				continue
			}
			sent++
		}
	}
	return sent, errors.Join(errs...)
}
