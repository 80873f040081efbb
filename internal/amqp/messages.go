package amqp

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"financeflow/internal/budget"
	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// MessageType tells consumers which payload a Message carries.
type MessageType string

const (
	TypeBudgetAlert  MessageType = "budget_alert"
	TypeBillReminder MessageType = "bill_reminder"
)

// Message is the envelope published on the queue. Exactly one payload is set.
type Message struct {
	Type         MessageType          `json:"type"`
	Timestamp    time.Time            `json:"timestamp"`
	BudgetAlert  *BudgetAlertMessage  `json:"budget_alert,omitempty"`
	BillReminder *BillReminderMessage `json:"bill_reminder,omitempty"`
}

// BudgetAlertMessage reports that spend in a category crossed the alert
// threshold for the current period.
type BudgetAlertMessage struct {
	Owner       string          `json:"user_id"`
	Email       string          `json:"email,omitempty"`
	Category    string          `json:"category"`
	Period      string          `json:"period"`
	PeriodStart string          `json:"period_start"`
	Percentage  float64         `json:"percentage"`
	Spent       decimal.Decimal `json:"spent"`
	Limit       decimal.Decimal `json:"limit"`
	Currency    currency.Code   `json:"currency"`
	Severity    string          `json:"severity"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
}

// BillReminderMessage reports an unpaid bill inside its reminder window.
type BillReminderMessage struct {
	Owner        string          `json:"user_id"`
	Email        string          `json:"email,omitempty"`
	BillID       string          `json:"bill_id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     currency.Code   `json:"currency"`
	DueDate      string          `json:"due_date"`
	DaysUntilDue int             `json:"days_until_due"`
}

// NewBudgetAlertMessage wraps an evaluated alert for publishing.
func NewBudgetAlertMessage(owner, email string, period core.BudgetPeriod, periodStart core.Date, a budget.Alert) *Message {
	severity := budget.SeverityWarning
	if a.Critical {
		severity = budget.SeverityCritical
	}
	return &Message{
		Type:      TypeBudgetAlert,
		Timestamp: time.Now(),
		BudgetAlert: &BudgetAlertMessage{
			Owner:       owner,
			Email:       email,
			Category:    a.Category,
			Period:      string(period),
			PeriodStart: periodStart.String(),
			Percentage:  a.Percentage,
			Spent:       a.Spent,
			Limit:       a.Limit,
			Currency:    a.Currency,
			Severity:    string(severity),
			Subject:     a.Subject(),
			Body:        a.Body(),
		},
	}
}

// NewBillReminderMessage wraps a bill that is due soon.
func NewBillReminderMessage(b core.Bill, email string, daysUntilDue int) *Message {
	return &Message{
		Type:      TypeBillReminder,
		Timestamp: time.Now(),
		BillReminder: &BillReminderMessage{
			Owner:        b.Owner,
			Email:        email,
			BillID:       b.ID,
			Name:         b.Name,
			Amount:       b.Amount.Amount,
			Currency:     b.Amount.Currency,
			DueDate:      b.DueDate.String(),
			DaysUntilDue: daysUntilDue,
		},
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes an envelope and checks that its payload matches
// its type.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case TypeBudgetAlert:
		if msg.BudgetAlert == nil {
			return nil, fmt.Errorf("%s message without payload", msg.Type)
		}
	case TypeBillReminder:
		if msg.BillReminder == nil {
			return nil, fmt.Errorf("%s message without payload", msg.Type)
		}
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return &msg, nil
}
