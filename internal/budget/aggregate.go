// Package budget combines expense transactions, paid bills and loan
// payments into per-category spend for a budget window and decides when
// spend warrants an alert.
package budget

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// Source identifies which collection a spend item came from.
type Source string

const (
	SourceTransaction Source = "transaction"
	SourceBill        Source = "bill"
	SourceLoan        Source = "loan"
)

const (
	defaultBillCategory = "Bills"
	defaultLoanNote     = "Loan Payment"
)

// Input is the materialized data for one owner.
type Input struct {
	Budgets      []core.Budget
	Transactions []core.Transaction
	Bills        []core.Bill
	LoanPayments []core.LoanPayment
}

// Item is one member of a category's spend, converted to the target
// currency. Source is always set.
type Item struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Source      Source          `json:"source"`
}

// Breakdown keeps the per-source totals of a category.
type Breakdown struct {
	Transactions decimal.Decimal `json:"transactions"`
	Bills        decimal.Decimal `json:"bills"`
	Loans        decimal.Decimal `json:"loans"`
}

// Total is the sum of all sources.
func (b Breakdown) Total() decimal.Decimal {
	return b.Transactions.Add(b.Bills).Add(b.Loans)
}

func (b *Breakdown) add(src Source, amount decimal.Decimal) {
	switch src {
	case SourceTransaction:
		b.Transactions = b.Transactions.Add(amount)
	case SourceBill:
		b.Bills = b.Bills.Add(amount)
	case SourceLoan:
		b.Loans = b.Loans.Add(amount)
	}
}

// CategorySpend is the aggregate for one budget.
type CategorySpend struct {
	BudgetID  string            `json:"budget_id"`
	Category  string            `json:"category"`
	Period    core.BudgetPeriod `json:"period"`
	Limit     decimal.Decimal   `json:"limit_amount"`
	Spent     decimal.Decimal   `json:"spent"`
	Breakdown Breakdown         `json:"breakdown"`
	Currency  currency.Code     `json:"currency"`
}

// Items groups every in-window spend item by category, each group sorted
// newest first. Equal dates keep input order: transactions, then bills,
// then loan payments.
//
// An expense transaction linked to a bill counts as bill spend. A paid
// bill contributes its own amount only when no linked transaction falls in
// the window, so one payment is never counted twice.
func Items(in Input, w core.Window, target currency.Code) map[string][]Item {
	out := make(map[string][]Item)
	linked := make(map[string]bool)

	for _, tx := range in.Transactions {
		if tx.Type != core.Expense || !w.Contains(tx.Date.Time) {
			continue
		}
		src := SourceTransaction
		if tx.BillID != "" {
			src = SourceBill
			linked[tx.BillID] = true
		}
		out[tx.Category] = append(out[tx.Category], Item{
			ID:          tx.ID,
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.In(target),
			Date:        tx.Date.Time,
			Source:      src,
		})
	}

	for _, b := range in.Bills {
		if b.PaidAt == nil || !w.Contains(*b.PaidAt) || linked[b.ID] {
			continue
		}
		cat := b.Category
		if cat == "" {
			cat = defaultBillCategory
		}
		out[cat] = append(out[cat], Item{
			ID:          b.ID,
			Category:    cat,
			Description: b.Name,
			Amount:      b.Amount.In(target),
			Date:        *b.PaidAt,
			Source:      SourceBill,
		})
	}

	for _, p := range in.LoanPayments {
		if !w.Contains(p.PaymentDate.Time) {
			continue
		}
		desc := p.Notes
		if desc == "" {
			desc = defaultLoanNote
		}
		out[core.LoansCategory] = append(out[core.LoansCategory], Item{
			ID:          p.ID,
			Category:    core.LoansCategory,
			Description: desc,
			Amount:      currency.Convert(p.Amount, p.Currency, target),
			Date:        p.PaymentDate.Time,
			Source:      SourceLoan,
		})
	}

	for cat := range out {
		slices.SortStableFunc(out[cat], func(a, b Item) int {
			return b.Date.Compare(a.Date)
		})
	}
	return out
}

// Aggregate returns one CategorySpend per budget, in budget order, with all
// amounts expressed in target. Categories without a budget are dropped.
func Aggregate(in Input, w core.Window, target currency.Code) []CategorySpend {
	return fromItems(in.Budgets, Items(in, w, target), target)
}

func fromItems(budgets []core.Budget, items map[string][]Item, target currency.Code) []CategorySpend {
	out := make([]CategorySpend, 0, len(budgets))
	for _, b := range budgets {
		bd := Breakdown{Transactions: decimal.Zero, Bills: decimal.Zero, Loans: decimal.Zero}
		for _, it := range items[b.Category] {
			bd.add(it.Source, it.Amount)
		}
		out = append(out, CategorySpend{
			BudgetID:  b.ID,
			Category:  b.Category,
			Period:    b.Period,
			Limit:     b.Limit.In(target),
			Spent:     bd.Total(),
			Breakdown: bd,
			Currency:  target,
		})
	}
	return out
}

// Unbudgeted returns the categories that have spend but no budget, sorted
// by name.
func Unbudgeted(in Input, w core.Window, target currency.Code) []string {
	budgeted := make(map[string]bool, len(in.Budgets))
	for _, b := range in.Budgets {
		budgeted[b.Category] = true
	}
	var out []string
	for cat := range Items(in, w, target) {
		if !budgeted[cat] {
			out = append(out, cat)
		}
	}
	slices.Sort(out)
	return out
}
