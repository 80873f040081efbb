package report

import (
	"testing"
	"time"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

func TestSummarizeBills(t *testing.T) {
	bill := func(id string, due core.Date, reminder int, active, paid bool, amount string) core.Bill {
		return core.Bill{ID: id, DueDate: due, ReminderDays: reminder, IsActive: active, IsPaid: paid, Amount: core.NewMoney(dec(amount), currency.USD)}
	}
	bills := []core.Bill{
		bill("soon", core.NewDate(2025, 3, 18), 5, true, false, "100"),
		bill("far", core.NewDate(2025, 4, 30), 3, true, false, "50"),
		bill("overdue", core.NewDate(2025, 3, 1), 0, true, false, "20"),
		bill("paid", core.NewDate(2025, 3, 16), 5, true, true, "10"),
		bill("inactive", core.NewDate(2025, 3, 16), 5, false, false, "1000"),
	}
	s := SummarizeBills(bills, now, currency.USD)
	if s.UpcomingCount != 2 || s.Upcoming[0].ID != "overdue" || s.Upcoming[1].ID != "soon" {
		t.Fatalf("unexpected upcoming %+v", s.Upcoming)
	}
	if s.UnpaidCount != 3 {
		t.Fatalf("unpaid want 3, got %d", s.UnpaidCount)
	}
	if !s.TotalBillsAmount.Equal(dec("180")) {
		t.Fatalf("total want 180, got %s", s.TotalBillsAmount)
	}
}

func TestSummarizeLoans(t *testing.T) {
	loans := []core.Loan{
		{Status: core.LoanActive, OutstandingBalance: dec("1000"), EMIAmount: dec("100"), Currency: currency.USD},
		{Status: core.LoanActive, OutstandingBalance: dec("920"), EMIAmount: dec("92"), Currency: currency.EUR},
		{Status: core.LoanClosed, OutstandingBalance: dec("0"), EMIAmount: dec("500"), Currency: currency.USD},
	}
	s := SummarizeLoans(loans, currency.USD)
	if s.ActiveLoans != 2 || !s.TotalOutstanding.Equal(dec("2000")) || !s.MonthlyEMI.Equal(dec("200")) {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestNetWorth(t *testing.T) {
	items := []core.AssetLiability{
		{Type: core.Asset, Value: core.NewMoney(dec("5000"), currency.USD), Date: core.NewDate(2025, 1, 1)},
		{Type: core.Asset, Value: core.NewMoney(dec("1000"), currency.USD), Date: core.NewDate(2025, 2, 1)},
		{Type: core.Liability, Value: core.NewMoney(dec("2500"), currency.USD), Date: core.NewDate(2025, 1, 1)},
	}
	nw := ComputeNetWorth(items, currency.USD)
	if !nw.Assets.Equal(dec("6000")) || !nw.Liabilities.Equal(dec("2500")) || !nw.Net.Equal(dec("3500")) {
		t.Fatalf("unexpected net worth %+v", nw)
	}
	hist := NetWorthHistory(items, currency.USD)
	if len(hist) != 2 || !hist[0].Net.Equal(dec("2500")) || !hist[1].Net.Equal(dec("3500")) {
		t.Fatalf("unexpected history %+v", hist)
	}
	if hist[0].Date.Format(time.DateOnly) != "2025-01-01" {
		t.Fatalf("history must be oldest first")
	}
}

func TestAdminReports(t *testing.T) {
	var txns []core.Transaction
	for m := 1; m <= 8; m++ {
		txns = append(txns, tx(core.Income, "Salary", "100", 2024, m, 1))
	}
	txns = append(txns, tx(core.Expense, "Groceries", "40", 2024, 8, 2))

	trends := MonthlyTrends(txns, 6, currency.USD)
	if len(trends) != 6 || trends[0].Month != "Mar 2024" || trends[5].Month != "Aug 2024" {
		t.Fatalf("unexpected trends %+v", trends)
	}
	if !trends[5].Expenses.Equal(dec("40")) {
		t.Fatalf("august expenses want 40, got %s", trends[5].Expenses)
	}

	for i := range txns {
		txns[i].Owner = "u1"
	}
	txns = append(txns, core.Transaction{Owner: "u2", Type: core.Expense, Category: "Rent", Amount: core.NewMoney(dec("900"), currency.USD), Date: core.NewDate(2024, 8, 3)})

	cats := TopCategories(txns, 5, currency.USD)
	if len(cats) != 2 || cats[0].Category != "Rent" {
		t.Fatalf("unexpected categories %+v", cats)
	}

	users := TopUsers(txns, []core.Profile{{ID: "u1", Username: "ana"}}, 10, currency.USD)
	if len(users) != 2 || users[0].Name != "ana" || users[0].Transactions != 9 || users[1].Name != "Unknown" {
		t.Fatalf("unexpected users %+v", users)
	}
}
