package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// Granularity selects the bucket size of a time series.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Mode selects how bucket values accumulate.
type Mode string

const (
	PerBucket  Mode = "per_bucket"
	Cumulative Mode = "cumulative"
)

// Bucket is one point of a time series.
type Bucket struct {
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Budget   decimal.Decimal `json:"budget"`
}

var hourMarks = []int{0, 4, 8, 12, 16, 20}

// BucketByTime spreads the transactions inside w over buckets of size g.
//
// Hourly series have marks 00:00, 04:00 ... 20:00; a transaction lands on
// the last mark at or before its time. A closing 23:59 mark follows for
// display: it never receives transactions, so it is zero per bucket and
// repeats the day's total when cumulative.
// Weekly series number weeks by ceil(day/7) and always show weeks 1-4,
// plus week 5 when the window reaches day 29. Monthly series show Jan-Dec.
//
// budgetTotal is spread as the budget line: whole for hourly and monthly
// points, a quarter per week.
func BucketByTime(txns []core.Transaction, w core.Window, g Granularity, mode Mode, budgetTotal decimal.Decimal, target currency.Code) []Bucket {
	buckets, index := layout(w, g, budgetTotal)
	for _, tx := range txns {
		at := occurredAt(tx)
		if !w.Contains(at) {
			continue
		}
		i := index(at)
		if i < 0 || i >= len(buckets) {
			continue
		}
		amt := tx.Amount.In(target)
		switch tx.Type {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(amt)
		case core.Expense:
			buckets[i].Expenses = buckets[i].Expenses.Add(amt)
		}
	}
	if mode == Cumulative {
		for i := 1; i < len(buckets); i++ {
			buckets[i].Income = buckets[i].Income.Add(buckets[i-1].Income)
			buckets[i].Expenses = buckets[i].Expenses.Add(buckets[i-1].Expenses)
		}
	}
	return buckets
}

func layout(w core.Window, g Granularity, budgetTotal decimal.Decimal) ([]Bucket, func(time.Time) int) {
	newBucket := func(label string, budget decimal.Decimal) Bucket {
		return Bucket{Label: label, Income: decimal.Zero, Expenses: decimal.Zero, Budget: budget}
	}
	switch g {
	case Hourly:
		out := make([]Bucket, 0, len(hourMarks)+1)
		for _, h := range hourMarks {
			out = append(out, newBucket(fmt.Sprintf("%02d:00", h), budgetTotal))
		}
		out = append(out, newBucket("23:59", budgetTotal))
		return out, func(t time.Time) int {
			return t.UTC().Hour() / 4
		}
	case Weekly:
		weeks := 4
		if w.End.UTC().Day() >= 29 {
			weeks = 5
		}
		weekly := budgetTotal.Div(decimal.NewFromInt(4))
		out := make([]Bucket, 0, weeks)
		for i := 1; i <= weeks; i++ {
			out = append(out, newBucket(fmt.Sprintf("Week %d", i), weekly))
		}
		return out, func(t time.Time) int {
			return (t.UTC().Day()+6)/7 - 1
		}
	default:
		out := make([]Bucket, 0, 12)
		for m := time.January; m <= time.December; m++ {
			out = append(out, newBucket(m.String()[:3], budgetTotal))
		}
		return out, func(t time.Time) int {
			return int(t.UTC().Month()) - 1
		}
	}
}

// LoanPaymentExpenses renders loan repayments as expenses in the Loans
// category so they can be bucketed with transactions.
func LoanPaymentExpenses(payments []core.LoanPayment) []core.Transaction {
	out := make([]core.Transaction, 0, len(payments))
	for _, p := range payments {
		out = append(out, core.Transaction{
			ID:          p.ID,
			Owner:       p.Owner,
			Type:        core.Expense,
			Category:    core.LoansCategory,
			Description: "Loan Payment",
			Amount:      core.NewMoney(p.Amount, p.Currency),
			Date:        p.PaymentDate,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}

// occurredAt is the transaction's creation instant when it was recorded on
// its own date, otherwise the start of its date.
func occurredAt(tx core.Transaction) time.Time {
	if !tx.CreatedAt.IsZero() && core.DateOf(tx.CreatedAt).Equal(tx.Date.Time) {
		return tx.CreatedAt.UTC()
	}
	return tx.Date.Time
}
