package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/budget"
	"financeflow/internal/core"
	"financeflow/internal/currency"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(typ core.TransactionType, cat, amount string, y, m, d int) core.Transaction {
	return core.Transaction{Type: typ, Category: cat, Amount: core.NewMoney(dec(amount), currency.USD), Date: core.NewDate(y, m, d)}
}

func TestSummarize(t *testing.T) {
	txns := []core.Transaction{
		tx(core.Income, "Salary", "4000", 2025, 3, 1),
		tx(core.Expense, "Groceries", "300", 2025, 3, 2),
		tx(core.Expense, "Dining Out", "100", 2025, 3, 3),
		tx(core.Expense, "Groceries", "600", 2025, 3, 20),
		tx(core.Expense, "Shopping", "999", 2025, 2, 27),
	}
	s := Summarize(txns, core.MonthWindow(now), currency.USD)
	if !s.TotalIncome.Equal(dec("4000")) || !s.TotalExpenses.Equal(dec("1000")) || !s.NetSavings.Equal(dec("3000")) {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.SavingsRate != 75 {
		t.Fatalf("savings rate want 75, got %v", s.SavingsRate)
	}
	if len(s.CategoryBreakdown) != 2 || s.CategoryBreakdown[0].Category != "Groceries" || s.CategoryBreakdown[0].Percentage != 90 {
		t.Fatalf("unexpected breakdown %+v", s.CategoryBreakdown)
	}
}

func TestSummarizeZeroIncome(t *testing.T) {
	s := Summarize([]core.Transaction{tx(core.Expense, "Other", "50", 2025, 3, 1)}, core.MonthWindow(now), currency.USD)
	if s.SavingsRate != 0 {
		t.Fatalf("savings rate must be 0 without income, got %v", s.SavingsRate)
	}
	empty := Summarize(nil, core.MonthWindow(now), currency.USD)
	if empty.SavingsRate != 0 || len(empty.CategoryBreakdown) != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestTop(t *testing.T) {
	var txns []core.Transaction
	for i, cat := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		txns = append(txns, tx(core.Expense, cat, decimal.NewFromInt(int64(10*(i+1))).String(), 2025, 3, 1))
	}
	top := Top(CategoryBreakdown(txns, core.MonthWindow(now), currency.USD), 5)
	if len(top) != 5 || top[0].Category != "G" || top[4].Category != "C" {
		t.Fatalf("unexpected top %+v", top)
	}
	if got := Top(top, 0); len(got) != 5 {
		t.Fatalf("n<=0 keeps all")
	}
}

func TestBucketByTimeWeekly(t *testing.T) {
	txns := []core.Transaction{
		tx(core.Expense, "A", "10", 2025, 3, 1),
		tx(core.Expense, "A", "20", 2025, 3, 7),
		tx(core.Expense, "A", "30", 2025, 3, 8),
		tx(core.Income, "S", "500", 2025, 3, 15),
		tx(core.Expense, "A", "40", 2025, 3, 31),
	}
	w := core.MonthWindow(now)
	per := BucketByTime(txns, w, Weekly, PerBucket, dec("400"), currency.USD)
	if len(per) != 5 {
		t.Fatalf("march needs a fifth week, got %d buckets", len(per))
	}
	wantExp := []string{"30", "30", "0", "0", "40"}
	for i, want := range wantExp {
		if !per[i].Expenses.Equal(dec(want)) {
			t.Fatalf("week %d: want %s, got %s", i+1, want, per[i].Expenses)
		}
		if !per[i].Budget.Equal(dec("100")) {
			t.Fatalf("weekly budget line should be a quarter of the total")
		}
	}
	if !per[2].Income.Equal(dec("500")) || per[0].Label != "Week 1" {
		t.Fatalf("unexpected bucket %+v", per[2])
	}

	cum := BucketByTime(txns, w, Weekly, Cumulative, dec("400"), currency.USD)
	if !cum[4].Expenses.Equal(dec("100")) || !cum[2].Expenses.Equal(dec("60")) {
		t.Fatalf("unexpected cumulative series %+v", cum)
	}

	feb := BucketByTime(nil, core.MonthWindow(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)), Weekly, PerBucket, decimal.Zero, currency.USD)
	if len(feb) != 4 {
		t.Fatalf("february 2025 has four weeks, got %d", len(feb))
	}
}

func TestBucketByTimeHourly(t *testing.T) {
	at := func(h int, amount string) core.Transaction {
		x := tx(core.Expense, "A", amount, 2025, 3, 15)
		x.CreatedAt = time.Date(2025, 3, 15, h, 30, 0, 0, time.UTC)
		return x
	}
	dateOnly := tx(core.Expense, "A", "1", 2025, 3, 15)
	txns := []core.Transaction{at(5, "10"), at(23, "5"), dateOnly}

	got := BucketByTime(txns, core.DayWindow(now), Hourly, Cumulative, dec("50"), currency.USD)
	labels := []string{"00:00", "04:00", "08:00", "12:00", "16:00", "20:00", "23:59"}
	want := []string{"1", "11", "11", "11", "11", "16", "16"}
	for i := range labels {
		if got[i].Label != labels[i] || !got[i].Expenses.Equal(dec(want[i])) {
			t.Fatalf("bucket %d: want %s=%s, got %s=%s", i, labels[i], want[i], got[i].Label, got[i].Expenses)
		}
	}
}

func TestBucketByTimeHourlyClosingMark(t *testing.T) {
	late := tx(core.Expense, "A", "7", 2025, 3, 15)
	late.CreatedAt = time.Date(2025, 3, 15, 23, 45, 0, 0, time.UTC)

	got := BucketByTime([]core.Transaction{late}, core.DayWindow(now), Hourly, PerBucket, decimal.Zero, currency.USD)
	if len(got) != 7 {
		t.Fatalf("got %d buckets, want 7", len(got))
	}
	if !got[5].Expenses.Equal(dec("7")) {
		t.Errorf("20:00 bucket = %s, want 7", got[5].Expenses)
	}
	if !got[6].Expenses.IsZero() {
		t.Errorf("closing mark = %s, want 0", got[6].Expenses)
	}
}

func TestLoanPaymentExpenses(t *testing.T) {
	payments := []core.LoanPayment{{
		ID: "p1", Owner: "u1", LoanID: "l1", PaymentDate: core.NewDate(2025, 3, 3),
		Amount: dec("92"), Currency: currency.EUR,
	}}
	txns := LoanPaymentExpenses(payments)
	if len(txns) != 1 || txns[0].Type != core.Expense || txns[0].Category != core.LoansCategory {
		t.Fatalf("txns = %+v", txns)
	}

	got := BucketByTime(txns, core.MonthWindow(now), Weekly, PerBucket, decimal.Zero, currency.USD)
	if !got[0].Expenses.Equal(dec("100")) {
		t.Errorf("week 1 expenses = %s, want 100 USD", got[0].Expenses)
	}
}

func TestBucketByTimeMonthlyDeterministic(t *testing.T) {
	txns := []core.Transaction{
		tx(core.Expense, "A", "10", 2025, 1, 5),
		tx(core.Expense, "A", "15", 2025, 12, 5),
		tx(core.Expense, "A", "99", 2024, 12, 5),
	}
	w := core.YearWindow(now)
	a := BucketByTime(txns, w, Monthly, PerBucket, dec("100"), currency.USD)
	b := BucketByTime(txns, w, Monthly, PerBucket, dec("100"), currency.USD)
	if len(a) != 12 || a[0].Label != "Jan" || a[11].Label != "Dec" {
		t.Fatalf("unexpected labels %+v", a)
	}
	if !a[0].Expenses.Equal(dec("10")) || !a[11].Expenses.Equal(dec("15")) {
		t.Fatalf("unexpected monthly values %+v", a)
	}
	for i := range a {
		if a[i].Label != b[i].Label || !a[i].Expenses.Equal(b[i].Expenses) {
			t.Fatalf("series must be identical across runs")
		}
	}
}

func TestPreset(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		g     Granularity
	}{
		{PresetToday, "2025-03-15", "2025-03-15", Hourly},
		{PresetThisMonth, "2025-03-01", "2025-03-31", Weekly},
		{"", "2025-03-01", "2025-03-31", Weekly},
		{PresetLastMonth, "2025-02-01", "2025-02-28", Weekly},
		{PresetThisYear, "2025-01-01", "2025-12-31", Monthly},
	}
	for _, tc := range cases {
		p, err := Preset(tc.name, now)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if p.Window.Start.Format(time.DateOnly) != tc.start || p.Window.End.Format(time.DateOnly) != tc.end || p.Granularity != tc.g {
			t.Fatalf("%q: unexpected period %+v", tc.name, p)
		}
	}
	if _, err := Preset("next-week", now); err != ErrUnknownPreset {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	jan := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	p, _ := Preset(PresetLastMonth, jan)
	if p.Window.Start.Format(time.DateOnly) != "2024-12-01" {
		t.Fatalf("last month of january is december, got %s", p.Window.Start)
	}
}

func TestSuggest(t *testing.T) {
	spend := func(cat, spent, limit string) budget.CategorySpend {
		return budget.CategorySpend{Category: cat, Spent: dec(spent), Limit: dec(limit), Currency: currency.USD}
	}
	tests := []struct {
		name   string
		in     SuggestionInput
		titles []string
	}{
		{
			name:   "nothing fires",
			in:     SuggestionInput{Budgets: []budget.CategorySpend{spend("Groceries", "10", "100")}, Summary: Summary{NetSavings: dec("100"), Currency: currency.USD}},
			titles: []string{"Great Financial Health!"},
		},
		{
			name: "all rules",
			in: SuggestionInput{
				Budgets: []budget.CategorySpend{spend("Groceries", "80", "100"), spend("Shopping", "95", "100"), spend("Utilities", "75", "100")},
				Summary: Summary{
					NetSavings:        dec("1500"),
					CategoryBreakdown: []CategoryShare{{Category: "Rent", Amount: dec("1200")}},
					Currency:          currency.USD,
				},
			},
			titles: []string{"Watch Groceries Spending", "Watch Utilities Spending", "Investment Opportunity", "Optimize Rent Spending"},
		},
		{
			name:   "thresholds are strict",
			in:     SuggestionInput{Summary: Summary{NetSavings: dec("1000"), CategoryBreakdown: []CategoryShare{{Category: "A", Amount: dec("200")}}}},
			titles: []string{"Great Financial Health!"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.in)
			if len(got) != len(tt.titles) {
				t.Fatalf("want %v, got %+v", tt.titles, got)
			}
			for i := range got {
				if got[i].Title != tt.titles[i] {
					t.Fatalf("want %v, got %+v", tt.titles, got)
				}
			}
		})
	}

	invest := Suggest(SuggestionInput{Summary: Summary{NetSavings: dec("2500"), Currency: currency.EUR}})
	if invest[0].Priority != PriorityHigh || invest[0].Description != "You have €2,500.00 in savings this period. Consider investing for better returns." {
		t.Fatalf("unexpected suggestion %+v", invest[0])
	}
}
