package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"financeflow/internal/amqp"
	"financeflow/internal/budget"
	"financeflow/internal/core"
	"financeflow/internal/currency"
)

type fakeRecorder struct {
	calls  []budget.Alert
	starts []core.Date
	seen   map[string]bool
	err    error
}

func (f *fakeRecorder) Record(_ context.Context, owner string, start core.Date, a budget.Alert) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	f.calls = append(f.calls, a)
	f.starts = append(f.starts, start)
	key := owner + a.Category + start.String()
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func alertMessage() *amqp.Message {
	spend := budget.CategorySpend{
		Category: "Groceries",
		Limit:    decimal.NewFromInt(100),
		Spent:    decimal.NewFromInt(92),
		Currency: currency.EUR,
	}
	return amqp.NewBudgetAlertMessage("user-1", "ann@example.com", core.PeriodMonthly, core.NewDate(2024, 3, 1), budget.NewAlert(spend))
}

func TestAlertWorker_RecordsBudgetAlert(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewAlertWorker(rec)

	for i := 0; i < 2; i++ {
		if err := w.HandleMessage(context.Background(), alertMessage()); err != nil {
			t.Fatalf("HandleMessage() error = %v", err)
		}
	}

	if len(rec.calls) != 2 {
		t.Fatalf("Record calls = %d, want 2", len(rec.calls))
	}
	got := rec.calls[0]
	if got.Category != "Groceries" || !got.Critical || got.Currency != currency.EUR {
		t.Errorf("alert = %+v", got)
	}
	if rec.starts[0].String() != "2024-03-01" {
		t.Errorf("period start = %s", rec.starts[0])
	}
}

func TestAlertWorker_StorageErrorRequeues(t *testing.T) {
	w := NewAlertWorker(&fakeRecorder{err: errors.New("db down")})
	if err := w.HandleMessage(context.Background(), alertMessage()); err == nil {
		t.Error("expected error so the message is requeued")
	}
}

func TestAlertWorker_AcknowledgesWithoutStoring(t *testing.T) {
	malformed := alertMessage()
	malformed.BudgetAlert.PeriodStart = "March"

	reminder := amqp.NewBillReminderMessage(core.Bill{
		ID: "b1", Owner: "user-1", Name: "Rent",
		Amount: core.NewMoney(decimal.NewFromInt(900), currency.USD), DueDate: core.NewDate(2024, 3, 18),
	}, "ann@example.com", 3)

	tests := []struct {
		name string
		msg  *amqp.Message
	}{
		{"malformed period", malformed},
		{"bill reminder", reminder},
		{"unknown type", &amqp.Message{Type: "mystery"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			if err := NewAlertWorker(rec).HandleMessage(context.Background(), tt.msg); err != nil {
				t.Fatalf("HandleMessage() error = %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("Record calls = %d, want 0", len(rec.calls))
			}
		})
	}
}
