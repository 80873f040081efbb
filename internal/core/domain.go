package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/currency"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	LoanActive    LoanStatus = "active"
	LoanClosed    LoanStatus = "closed"
	LoanDefaulted LoanStatus = "defaulted"
)

const (
	Asset     HoldingType = "asset"
	Liability HoldingType = "liability"
)

// PaymentCompleted is the status stored on every recorded loan payment.
const PaymentCompleted = "completed"

// LoansCategory is the synthetic budget category all loan payments count toward.
const LoansCategory = "Loans"

type (
	TransactionType string
	BudgetPeriod    string
	Frequency       string
	LoanStatus      string
	LoanType        string
	AccountType     string
	HoldingType     string

	Date struct {
		time.Time
	}

	Money struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency currency.Code   `json:"currency"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Owner       string          `json:"user_id"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Date        Date            `json:"date"`
		AccountID   string          `json:"account_id,omitempty"`
		BillID      string          `json:"bill_id,omitempty"` // set when synthesized by paying a bill
		CreatedAt   time.Time       `json:"created_at"`
	}

	Budget struct {
		ID        string       `json:"id"`
		Owner     string       `json:"user_id"`
		Category  string       `json:"category"`
		Limit     Money        `json:"limit_amount"`
		Period    BudgetPeriod `json:"period"`
		CreatedAt time.Time    `json:"created_at"`
	}

	Bill struct {
		ID           string     `json:"id"`
		Owner        string     `json:"user_id"`
		Name         string     `json:"name"`
		Amount       Money      `json:"amount"`
		Category     string     `json:"category"`
		DueDate      Date       `json:"due_date"`
		Frequency    Frequency  `json:"frequency"`
		ReminderDays int        `json:"reminder_days"`
		IsActive     bool       `json:"is_active"`
		IsPaid       bool       `json:"is_paid"`
		PaidAt       *time.Time `json:"paid_at,omitempty"`
		CreatedAt    time.Time  `json:"created_at"`
	}

	Loan struct {
		ID                 string          `json:"id"`
		Owner              string          `json:"user_id"`
		Name               string          `json:"name"`
		Type               LoanType        `json:"type"`
		PrincipalAmount    decimal.Decimal `json:"principal_amount"`
		InterestRate       decimal.Decimal `json:"interest_rate"`
		TenureMonths       int             `json:"tenure_months"`
		StartDate          Date            `json:"start_date"`
		DueDay             int             `json:"due_day"`
		EMIAmount          decimal.Decimal `json:"emi_amount"`
		OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
		Status             LoanStatus      `json:"status"`
		Currency           currency.Code   `json:"currency"`
		Notes              string          `json:"notes,omitempty"`
		CreatedAt          time.Time       `json:"created_at"`
	}

	LoanPayment struct {
		ID            string          `json:"id"`
		Owner         string          `json:"user_id"`
		LoanID        string          `json:"loan_id"`
		PaymentDate   Date            `json:"payment_date"`
		Amount        decimal.Decimal `json:"amount"`
		PrincipalPaid decimal.Decimal `json:"principal_paid"`
		InterestPaid  decimal.Decimal `json:"interest_paid"`
		Currency      currency.Code   `json:"currency"`
		Status        string          `json:"status"`
		Notes         string          `json:"notes,omitempty"`
		CreatedAt     time.Time       `json:"created_at"`
	}

	AssetLiability struct {
		ID        string      `json:"id"`
		Owner     string      `json:"user_id"`
		Type      HoldingType `json:"type"`
		Name      string      `json:"name"`
		Value     Money       `json:"value"`
		Category  string      `json:"category"`
		Date      Date        `json:"date"`
		Notes     string      `json:"notes,omitempty"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Account struct {
		ID        string      `json:"id"`
		Owner     string      `json:"user_id"`
		Name      string      `json:"name"`
		Type      AccountType `json:"type"`
		Balance   Money       `json:"balance"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Profile struct {
		ID                 string    `json:"id"`
		Email              string    `json:"email"`
		FullName           string    `json:"full_name,omitempty"`
		Username           string    `json:"username,omitempty"`
		EmailAlertsEnabled bool      `json:"email_alerts_enabled"`
		CreatedAt          time.Time `json:"created_at"`
	}

	// BudgetAlert is a stored notification that spend in a category crossed
	// the alert threshold during one budget period.
	BudgetAlert struct {
		ID          string          `json:"id"`
		Owner       string          `json:"user_id"`
		Category    string          `json:"category"`
		PeriodStart Date            `json:"period_start"`
		Percentage  float64         `json:"percentage"`
		Spent       decimal.Decimal `json:"spent"`
		Limit       decimal.Decimal `json:"limit"`
		Currency    currency.Code   `json:"currency"`
		CreatedAt   time.Time       `json:"created_at"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrLoanNotActive    = errors.New("loan is not active")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrTooLong          = errors.New("too long")
	ErrOutOfRange       = errors.New("out of range")
	ErrInvalidEnum      = errors.New("invalid value")
	ErrEmptyOwner       = errors.New("empty owner")
	ErrInvalidEmail     = errors.New("invalid email")
)

// NewMoney builds a Money value, defaulting the currency to USD.
func NewMoney(amount decimal.Decimal, c currency.Code) Money {
	if c == "" {
		c = currency.Default
	}
	return Money{Amount: amount, Currency: c}
}

// In converts m into c.
func (m Money) In(c currency.Code) decimal.Decimal {
	return currency.Convert(m.Amount, m.Currency, c)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// AddMonths moves the date by n months, clamping to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// DaysUntil returns the whole days from today until d (negative when past).
func (d Date) DaysUntil(today Date) int {
	return int(d.Sub(today.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) > len(time.DateOnly) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return ErrInvalidDate
		}
		*d = DateOf(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsTerminal reports whether the loan accepts no further payments.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanClosed || s == LoanDefaulted
}
