package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/currency"
)

var now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func usd(s string) Money {
	return NewMoney(decimal.RequireFromString(s), currency.USD)
}

func TestDateAddMonths(t *testing.T) {
	cases := []struct {
		in   Date
		n    int
		want Date
	}{
		{NewDate(2025, 1, 31), 1, NewDate(2025, 2, 28)},
		{NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{NewDate(2025, 11, 30), 3, NewDate(2026, 2, 28)},
		{NewDate(2025, 5, 15), 12, NewDate(2026, 5, 15)},
		{NewDate(2025, 3, 31), -1, NewDate(2025, 2, 28)},
	}
	for i, tc := range cases {
		if got := tc.in.AddMonths(tc.n); !got.Equal(tc.want.Time) {
			t.Fatalf("case %d expected %s, got %s", i, tc.want, got)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	today := NewDate(2025, 3, 15)
	if d := NewDate(2025, 3, 18).DaysUntil(today); d != 3 {
		t.Fatalf("expected 3, got %d", d)
	}
	if d := NewDate(2025, 3, 10).DaysUntil(today); d != -5 {
		t.Fatalf("expected -5, got %d", d)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := d.UnmarshalJSON([]byte(`"2025-02-03"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-02-03" {
		t.Fatalf("got %s", d)
	}
	if err := d.UnmarshalJSON([]byte(`"2025-02-03T22:10:00Z"`)); err != nil || d.String() != "2025-02-03" {
		t.Fatalf("timestamp form: %s %v", d, err)
	}
	if err := d.UnmarshalJSON([]byte(`"03/02/2025"`)); err == nil {
		t.Fatalf("expected error")
	}
	b, _ := NewDate(2025, 12, 1).MarshalJSON()
	if string(b) != `"2025-12-01"` {
		t.Fatalf("got %s", b)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Owner:       "u1",
		Type:        Expense,
		Category:    "Groceries",
		Description: "weekly shop",
		Amount:      usd("45.20"),
		Date:        NewDate(2025, 3, 1),
	}
	if err := good.Validate(now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, ErrTooLong},
		{"zero amount", func(tx *Transaction) { tx.Amount = usd("0") }, ErrInvalidAmount},
		{"huge amount", func(tx *Transaction) { tx.Amount = usd("1000000000") }, ErrInvalidAmount},
		{"bad currency", func(tx *Transaction) { tx.Amount.Currency = "BTC" }, ErrInvalidCurrency},
		{"future date", func(tx *Transaction) { tx.Date = NewDate(2025, 3, 16) }, ErrInvalidDate},
		{"ancient date", func(tx *Transaction) { tx.Date = NewDate(1899, 12, 31) }, ErrInvalidDate},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidEnum},
		{"no owner", func(tx *Transaction) { tx.Owner = "" }, ErrEmptyOwner},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			err := tx.Validate(now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) || len(verrs) != 1 {
				t.Fatalf("expected exactly one field error, got %v", err)
			}
		})
	}
}

func TestValidationCollectsAllFields(t *testing.T) {
	err := Bill{}.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, f := range []string{"user_id", "name", "amount", "currency", "category", "due_date", "frequency"} {
		if !fields[f] {
			t.Errorf("missing error for %s in %v", f, err)
		}
	}
}

func TestLoanValidate(t *testing.T) {
	good := Loan{
		Owner:           "u1",
		Name:            "Car",
		Type:            "auto_loan",
		PrincipalAmount: decimal.NewFromInt(20000),
		InterestRate:    decimal.RequireFromString("7.5"),
		TenureMonths:    48,
		StartDate:       NewDate(2025, 1, 1),
		DueDay:          5,
		Currency:        currency.EUR,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Loan)
	}{
		{"rate over 100", func(l *Loan) { l.InterestRate = decimal.NewFromInt(101) }},
		{"negative rate", func(l *Loan) { l.InterestRate = decimal.NewFromInt(-1) }},
		{"tenure zero", func(l *Loan) { l.TenureMonths = 0 }},
		{"tenure too long", func(l *Loan) { l.TenureMonths = 601 }},
		{"due day", func(l *Loan) { l.DueDay = 32 }},
		{"type", func(l *Loan) { l.Type = "mortgage" }},
		{"notes", func(l *Loan) { l.Notes = strings.Repeat("n", 501) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := good
			tc.mutate(&l)
			if err := l.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestValidateLoanTerms(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		months  int
		wantErr bool
	}{
		{"lower bounds", "0", 1, false},
		{"upper bounds", "100", MaxTenureMonths, false},
		{"tenure zero", "5", 0, true},
		{"tenure too long", "5", MaxTenureMonths + 1, true},
		{"rate too high", "100.01", 12, true},
		{"negative rate", "-0.5", 12, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLoanTerms(decimal.RequireFromString(tt.rate), tt.months)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLoanTerms() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("error %v should wrap ErrOutOfRange", err)
			}
		})
	}
}

func TestCHFAcceptedForInput(t *testing.T) {
	b := Budget{Owner: "u1", Category: "Utilities", Limit: NewMoney(decimal.NewFromInt(100), currency.CHF), Period: PeriodMonthly}
	if err := b.Validate(); err != nil {
		t.Fatalf("CHF should be a valid input currency: %v", err)
	}
}

func TestLoanStatusTerminal(t *testing.T) {
	if LoanActive.IsTerminal() {
		t.Fatalf("active is not terminal")
	}
	if !LoanClosed.IsTerminal() || !LoanDefaulted.IsTerminal() {
		t.Fatalf("closed and defaulted are terminal")
	}
}
