package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// BillsSummary describes the active bills of an owner.
type BillsSummary struct {
	Upcoming         []core.Bill     `json:"upcoming"`
	UpcomingCount    int             `json:"upcoming_bills"`
	TotalBillsAmount decimal.Decimal `json:"total_bills_amount"`
	UnpaidCount      int             `json:"unpaid_count"`
	Currency         currency.Code   `json:"currency"`
}

// SummarizeBills considers active bills only. A bill is upcoming when it
// is unpaid and due before today plus its reminder days; overdue bills are
// therefore upcoming too. Upcoming bills are sorted by due date.
func SummarizeBills(bills []core.Bill, now time.Time, target currency.Code) BillsSummary {
	today := core.DateOf(now)
	s := BillsSummary{TotalBillsAmount: decimal.Zero, Currency: target}
	for _, b := range bills {
		if !b.IsActive {
			continue
		}
		s.TotalBillsAmount = s.TotalBillsAmount.Add(b.Amount.In(target))
		if b.IsPaid {
			continue
		}
		s.UnpaidCount++
		if b.DueDate.Before(today.AddDate(0, 0, b.ReminderDays)) {
			s.Upcoming = append(s.Upcoming, b)
		}
	}
	slices.SortStableFunc(s.Upcoming, func(a, b core.Bill) int {
		return a.DueDate.Compare(b.DueDate.Time)
	})
	s.UpcomingCount = len(s.Upcoming)
	return s
}

// LoansSummary describes the active loans of an owner.
type LoansSummary struct {
	ActiveLoans      int             `json:"active_loans"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	MonthlyEMI       decimal.Decimal `json:"monthly_emi"`
	Currency         currency.Code   `json:"currency"`
}

func SummarizeLoans(loans []core.Loan, target currency.Code) LoansSummary {
	s := LoansSummary{TotalOutstanding: decimal.Zero, MonthlyEMI: decimal.Zero, Currency: target}
	for _, l := range loans {
		if l.Status != core.LoanActive {
			continue
		}
		s.ActiveLoans++
		s.TotalOutstanding = s.TotalOutstanding.Add(currency.Convert(l.OutstandingBalance, l.Currency, target))
		s.MonthlyEMI = s.MonthlyEMI.Add(currency.Convert(l.EMIAmount, l.Currency, target))
	}
	return s
}

// NetWorth is assets minus liabilities.
type NetWorth struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Net         decimal.Decimal `json:"net_worth"`
	Currency    currency.Code   `json:"currency"`
}

func ComputeNetWorth(items []core.AssetLiability, target currency.Code) NetWorth {
	nw := NetWorth{Assets: decimal.Zero, Liabilities: decimal.Zero, Currency: target}
	for _, it := range items {
		switch it.Type {
		case core.Asset:
			nw.Assets = nw.Assets.Add(it.Value.In(target))
		case core.Liability:
			nw.Liabilities = nw.Liabilities.Add(it.Value.In(target))
		}
	}
	nw.Net = nw.Assets.Sub(nw.Liabilities)
	return nw
}

// NetWorthPoint is the running net worth at one date.
type NetWorthPoint struct {
	Date core.Date       `json:"date"`
	Net  decimal.Decimal `json:"net_worth"`
}

// NetWorthHistory accumulates entries by date, oldest first.
func NetWorthHistory(items []core.AssetLiability, target currency.Code) []NetWorthPoint {
	byDate := make(map[time.Time]decimal.Decimal)
	for _, it := range items {
		v := it.Value.In(target)
		if it.Type == core.Liability {
			v = v.Neg()
		}
		byDate[it.Date.Time] = byDate[it.Date.Time].Add(v)
	}
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, time.Time.Compare)

	out := make([]NetWorthPoint, 0, len(dates))
	running := decimal.Zero
	for _, d := range dates {
		running = running.Add(byDate[d])
		out = append(out, NetWorthPoint{Date: core.Date{Time: d}, Net: running})
	}
	return out
}
