package budget

import (
	"strings"
	"testing"
	"time"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		spent     string
		limit     string
		pct       float64
		severity  Severity
		over      bool
		alert     bool
		remaining string
	}{
		{"untouched", "0", "100", 0, SeverityOK, false, false, "100"},
		{"half", "50", "100", 50, SeverityWarning, false, false, "50"},
		{"eighty", "80", "100", 80, SeverityWarning, false, true, "20"},
		{"just under eighty", "79.995", "100", 80, SeverityWarning, false, false, "20.005"},
		{"just under ninety", "89.999", "100", 90, SeverityWarning, false, true, "10.001"},
		{"ninety", "90", "100", 90, SeverityCritical, false, true, "10"},
		{"over", "130", "100", 130, SeverityCritical, true, true, "-30"},
		{"zero limit", "10", "0", 0, SeverityOK, true, false, "-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(CategorySpend{Spent: dec(tt.spent), Limit: dec(tt.limit)}, DefaultAlertPercent)
			if st.Percentage != tt.pct || st.Severity != tt.severity || st.OverBudget != tt.over || st.ShouldAlert != tt.alert {
				t.Fatalf("unexpected status %+v", st)
			}
			if !st.Remaining.Equal(dec(tt.remaining)) {
				t.Fatalf("remaining: want %s, got %s", tt.remaining, st.Remaining)
			}
		})
	}
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		p     core.BudgetPeriod
		start string
	}{
		{core.PeriodWeekly, "2025-03-10"},
		{core.PeriodMonthly, "2025-03-01"},
		{core.PeriodYearly, "2025-01-01"},
		{"", "2025-03-01"},
	}
	for _, tc := range cases {
		if got := PeriodWindow(tc.p, now).Start.Format(time.DateOnly); got != tc.start {
			t.Fatalf("%q: want %s, got %s", tc.p, tc.start, got)
		}
	}
}

func TestAlertText(t *testing.T) {
	a := NewAlert(CategorySpend{Category: "Dining Out", Spent: dec("460"), Limit: dec("500"), Currency: currency.USD})
	if a.Subject() != "Budget Alert: Dining Out - 92% Used" {
		t.Fatalf("unexpected subject %q", a.Subject())
	}
	if !a.Critical {
		t.Fatalf("92%% should be critical")
	}
	body := a.Body()
	for _, want := range []string{"Critical Alert", "Spent: $460.00", "Budget Limit: $500.00", "Remaining: $40.00", "Action Required"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}

	over := NewAlert(CategorySpend{Category: "Shopping", Spent: dec("120"), Limit: dec("100"), Currency: currency.EUR})
	if !strings.Contains(over.Body(), "Remaining: -€20.00") {
		t.Fatalf("overspend should show negative remaining:\n%s", over.Body())
	}
}
