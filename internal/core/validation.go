package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"financeflow/internal/currency"
)

var (
	IncomeCategories  = []string{"Salary", "Freelance", "Investment", "Education", "Other Income"}
	ExpenseCategories = []string{"Groceries", "Dining Out", "Transportation", "Utilities", "Entertainment", "Healthcare", "Shopping", "Education", "Other"}
	BudgetCategories  = []string{"Groceries", "Entertainment", "Transportation", "Dining Out", "Shopping", "Utilities", "Healthcare", "Education", "Bills", LoansCategory, "Other"}
	BillCategories    = []string{"Rent", "Utilities", "Internet", "Phone", "Subscriptions", "Insurance", "Loan", "Other"}

	Frequencies   = []Frequency{Weekly, Monthly, Quarterly, Yearly}
	BudgetPeriods = []BudgetPeriod{PeriodWeekly, PeriodMonthly, PeriodYearly}
	AccountTypes  = []AccountType{"checking", "savings", "credit", "investment"}
	LoanTypes     = []LoanType{"personal_loan", "home_loan", "auto_loan", "education_loan", "credit_card", "other"}
)

var (
	maxAmount    = decimal.NewFromInt(999999999)
	maxPrincipal = decimal.NewFromInt(999999999999)
	maxRate      = decimal.NewFromInt(100)
	minDate      = NewDate(1900, 1, 1)
)

const (
	maxDescriptionLen = 200
	maxNameLen        = 100
	maxNotesLen       = 500
	maxReminderDays   = 30
)

// MaxTenureMonths is the longest loan term accepted anywhere.
const MaxTenureMonths = 600

// ValidationError describes one rejected field.
type ValidationError struct {
	Field string
	Err   error
	Msg   string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationErrors collects every field problem found in one input.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is/As.
func (v ValidationErrors) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field string, err error, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Field: field, Err: err, Msg: fmt.Sprintf(format, args...)})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

func (v *validator) text(field, value string, required bool, max int, label string) {
	trimmed := strings.TrimSpace(value)
	if required && trimmed == "" {
		v.add(field, ErrEmptyName, "%s is required", label)
		return
	}
	if utf8.RuneCountInString(trimmed) > max {
		v.add(field, ErrTooLong, "%s must be less than %d characters", label, max)
	}
}

func (v *validator) positive(field string, amount, max decimal.Decimal, label string) {
	if !amount.IsPositive() {
		v.add(field, ErrInvalidAmount, "%s must be greater than 0", label)
		return
	}
	if amount.GreaterThan(max) {
		v.add(field, ErrInvalidAmount, "%s is too large", label)
	}
}

func (v *validator) currencyCode(field string, c currency.Code) {
	if !currency.IsSupported(c) {
		v.add(field, ErrInvalidCurrency, "unsupported currency %q", c)
	}
}

func (v *validator) loanTerms(rate decimal.Decimal, months int) {
	if rate.IsNegative() {
		v.add("interest_rate", ErrOutOfRange, "Interest rate cannot be negative")
	} else if rate.GreaterThan(maxRate) {
		v.add("interest_rate", ErrOutOfRange, "Interest rate cannot exceed 100%%")
	}
	if months < 1 || months > MaxTenureMonths {
		v.add("tenure_months", ErrOutOfRange, "Tenure must be between 1 and %d months", MaxTenureMonths)
	}
}

// ValidateLoanTerms checks a rate and tenure given to the calculators.
func ValidateLoanTerms(rate decimal.Decimal, months int) error {
	var v validator
	v.loanTerms(rate, months)
	return v.err()
}

func (v *validator) owner(owner string) {
	if strings.TrimSpace(owner) == "" {
		v.add("user_id", ErrEmptyOwner, "owner is required")
	}
}

// Validate checks a transaction against the input rules. now bounds the date.
func (t Transaction) Validate(now time.Time) error {
	var v validator
	v.owner(t.Owner)
	if strings.TrimSpace(t.Description) == "" {
		v.add("description", ErrEmptyDescription, "Description is required")
	} else {
		v.text("description", t.Description, false, maxDescriptionLen, "Description")
	}
	v.positive("amount", t.Amount.Amount, maxAmount, "Amount")
	v.currencyCode("currency", t.Amount.Currency)
	if t.Type != Income && t.Type != Expense {
		v.add("type", ErrInvalidEnum, "type must be income or expense")
	}
	if strings.TrimSpace(t.Category) == "" {
		v.add("category", ErrInvalidCategory, "Category is required")
	}
	if t.Date.IsZero() || t.Date.Before(minDate.Time) || t.Date.After(DateOf(now).Time) {
		v.add("date", ErrInvalidDate, "Date must be between 1900 and today")
	}
	return v.err()
}

// Validate checks an account.
func (a Account) Validate() error {
	var v validator
	v.owner(a.Owner)
	v.text("name", a.Name, true, maxNameLen, "Account name")
	if !slices.Contains(AccountTypes, a.Type) {
		v.add("type", ErrInvalidEnum, "Please select an account type")
	}
	if a.Balance.Amount.Abs().GreaterThan(maxAmount) {
		v.add("balance", ErrOutOfRange, "Balance is out of range")
	}
	v.currencyCode("currency", a.Balance.Currency)
	return v.err()
}

// Validate checks a budget.
func (b Budget) Validate() error {
	var v validator
	v.owner(b.Owner)
	if !slices.Contains(BudgetCategories, b.Category) {
		v.add("category", ErrInvalidCategory, "Please select a category")
	}
	v.positive("limit_amount", b.Limit.Amount, maxAmount, "Budget limit")
	v.currencyCode("currency", b.Limit.Currency)
	if !slices.Contains(BudgetPeriods, b.Period) {
		v.add("period", ErrInvalidEnum, "period must be weekly, monthly or yearly")
	}
	return v.err()
}

// Validate checks a bill.
func (b Bill) Validate() error {
	var v validator
	v.owner(b.Owner)
	v.text("name", b.Name, true, maxNameLen, "Bill name")
	v.positive("amount", b.Amount.Amount, maxAmount, "Amount")
	v.currencyCode("currency", b.Amount.Currency)
	if !slices.Contains(BillCategories, b.Category) {
		v.add("category", ErrInvalidCategory, "Please select a category")
	}
	if b.DueDate.IsZero() {
		v.add("due_date", ErrInvalidDate, "Due date is required")
	}
	if !slices.Contains(Frequencies, b.Frequency) {
		v.add("frequency", ErrInvalidEnum, "frequency must be weekly, monthly, quarterly or yearly")
	}
	if b.ReminderDays < 0 || b.ReminderDays > maxReminderDays {
		v.add("reminder_days", ErrOutOfRange, "Reminder days must be between 0 and %d", maxReminderDays)
	}
	return v.err()
}

// Validate checks a loan before creation.
func (l Loan) Validate() error {
	var v validator
	v.owner(l.Owner)
	v.text("name", l.Name, true, maxNameLen, "Loan name")
	if !slices.Contains(LoanTypes, l.Type) {
		v.add("type", ErrInvalidEnum, "invalid loan type")
	}
	v.positive("principal_amount", l.PrincipalAmount, maxPrincipal, "Principal amount")
	v.loanTerms(l.InterestRate, l.TenureMonths)
	if l.StartDate.IsZero() {
		v.add("start_date", ErrInvalidDate, "Start date is required")
	}
	if l.DueDay < 1 || l.DueDay > 31 {
		v.add("due_day", ErrOutOfRange, "Due day must be between 1 and 31")
	}
	v.currencyCode("currency", l.Currency)
	v.text("notes", l.Notes, false, maxNotesLen, "Notes")
	return v.err()
}

// Validate checks a loan payment request.
func (p LoanPayment) Validate() error {
	var v validator
	v.owner(p.Owner)
	if strings.TrimSpace(p.LoanID) == "" {
		v.add("loan_id", ErrNotFound, "loan is required")
	}
	v.positive("amount", p.Amount, maxPrincipal, "Payment amount")
	if p.PaymentDate.IsZero() {
		v.add("payment_date", ErrInvalidDate, "Payment date is required")
	}
	v.text("notes", p.Notes, false, maxNotesLen, "Notes")
	return v.err()
}

// Validate checks an asset or liability entry.
func (a AssetLiability) Validate() error {
	var v validator
	v.owner(a.Owner)
	v.text("name", a.Name, true, maxNameLen, "Name")
	if a.Type != Asset && a.Type != Liability {
		v.add("type", ErrInvalidEnum, "type must be asset or liability")
	}
	if a.Value.Amount.IsNegative() || a.Value.Amount.GreaterThan(maxPrincipal) {
		v.add("value", ErrOutOfRange, "Value is out of range")
	}
	v.currencyCode("currency", a.Value.Currency)
	v.text("category", a.Category, true, maxNameLen, "Category")
	v.text("notes", a.Notes, false, maxNotesLen, "Notes")
	return v.err()
}
