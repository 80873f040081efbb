// Package report turns transactions and the other finance records of an
// owner into period summaries, time series, category breakdowns and
// suggestions. Every function is pure and deterministic: "now" is always
// an argument.
package report

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

var hundred = decimal.NewFromInt(100)

// Summary is the income/expense picture of one window.
type Summary struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetSavings        decimal.Decimal `json:"net_savings"`
	SavingsRate       float64         `json:"savings_rate"`
	CategoryBreakdown []CategoryShare `json:"category_breakdown"`
	Currency          currency.Code   `json:"currency"`
}

// CategoryShare is one expense category and its share of all expenses.
type CategoryShare struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// Summarize totals the transactions inside w in the target currency.
// SavingsRate is 0 when there is no income. The breakdown is complete;
// use Top to truncate it.
func Summarize(txns []core.Transaction, w core.Window, target currency.Code) Summary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txns {
		if !w.Contains(tx.Date.Time) {
			continue
		}
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount.In(target))
		case core.Expense:
			expenses = expenses.Add(tx.Amount.In(target))
		}
	}
	net := income.Sub(expenses)
	return Summary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetSavings:        net,
		SavingsRate:       ratio(net, income),
		CategoryBreakdown: CategoryBreakdown(txns, w, target),
		Currency:          target,
	}
}

// CategoryBreakdown sums expenses per category, largest first. Equal
// amounts are ordered by category name.
func CategoryBreakdown(txns []core.Transaction, w core.Window, target currency.Code) []CategoryShare {
	totals := make(map[string]decimal.Decimal)
	all := decimal.Zero
	for _, tx := range txns {
		if tx.Type != core.Expense || !w.Contains(tx.Date.Time) {
			continue
		}
		amt := tx.Amount.In(target)
		totals[tx.Category] = totals[tx.Category].Add(amt)
		all = all.Add(amt)
	}
	return shares(totals, all)
}

func shares(totals map[string]decimal.Decimal, all decimal.Decimal) []CategoryShare {
	out := make([]CategoryShare, 0, len(totals))
	for cat, amt := range totals {
		out = append(out, CategoryShare{Category: cat, Amount: amt, Percentage: ratio(amt, all)})
	}
	slices.SortFunc(out, func(a, b CategoryShare) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// Top returns at most n leading entries. n <= 0 returns everything.
func Top(s []CategoryShare, n int) []CategoryShare {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// ratio returns part/whole*100 rounded to two places, 0 for a
// non-positive whole.
func ratio(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	f, _ := part.Div(whole).Mul(hundred).Round(2).Float64()
	return f
}
