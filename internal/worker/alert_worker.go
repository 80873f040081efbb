package worker

import (
	"context"
	"fmt"
	"log/slog"

	"financeflow/internal/amqp"
	"financeflow/internal/budget"
	"financeflow/internal/core"
)

// AlertRecorder stores budget alerts, de-duplicated per owner, category and
// period.
type AlertRecorder interface {
	Record(ctx context.Context, owner string, periodStart core.Date, a budget.Alert) (bool, error)
}

// AlertWorker turns queued events into stored notifications.
type AlertWorker struct {
	alerts AlertRecorder
}

func NewAlertWorker(alerts AlertRecorder) *AlertWorker {
	return &AlertWorker{alerts: alerts}
}

// HandleMessage processes one event. Malformed payloads are logged and
// acknowledged; only storage failures are returned so the broker requeues.
func (w *AlertWorker) HandleMessage(ctx context.Context, msg *amqp.Message) error {
	switch msg.Type {
	case amqp.TypeBudgetAlert:
		return w.handleBudgetAlert(ctx, msg.BudgetAlert)
	case amqp.TypeBillReminder:
		w.handleBillReminder(ctx, msg.BillReminder)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring message of unknown type", "type", msg.Type)
		return nil
	}
}

func (w *AlertWorker) handleBudgetAlert(ctx context.Context, m *amqp.BudgetAlertMessage) error {
	start, err := core.ParseDate(m.PeriodStart)
	if err != nil || m.Owner == "" || m.Category == "" {
		slog.WarnContext(ctx, "Dropping malformed budget alert",
			"user_id", m.Owner,
			"category", m.Category,
			"period_start", m.PeriodStart)
		return nil
	}

	created, err := w.alerts.Record(ctx, m.Owner, start, budget.Alert{
		Category:   m.Category,
		Spent:      m.Spent,
		Limit:      m.Limit,
		Percentage: m.Percentage,
		Currency:   m.Currency,
		Critical:   m.Severity == string(budget.SeverityCritical),
	})
	if err != nil {
		return fmt.Errorf("record budget alert: %w", err)
	}
	if !created {
		slog.DebugContext(ctx, "Budget alert already recorded for period",
			"user_id", m.Owner,
			"category", m.Category,
			"period_start", m.PeriodStart)
		return nil
	}

	// Delivery to the inbox is handled outside this service; the subject
	// and body travel with the event.
	slog.InfoContext(ctx, "Budget alert ready for delivery",
		"user_id", m.Owner,
		"email", m.Email,
		"subject", m.Subject,
		"severity", m.Severity)
	return nil
}

func (w *AlertWorker) handleBillReminder(ctx context.Context, m *amqp.BillReminderMessage) {
	slog.InfoContext(ctx, "Bill reminder ready for delivery",
		"user_id", m.Owner,
		"email", m.Email,
		"bill_id", m.BillID,
		"name", m.Name,
		"due_date", m.DueDate,
		"days_until_due", m.DaysUntilDue)
}
