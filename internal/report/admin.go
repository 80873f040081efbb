package report

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// MonthTotals is income and expenses of one calendar month across owners.
type MonthTotals struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// MonthlyTrends groups transactions by calendar month and keeps the last n
// months that have data, oldest first.
func MonthlyTrends(txns []core.Transaction, n int, target currency.Code) []MonthTotals {
	type key struct {
		year  int
		month time.Month
	}
	totals := make(map[key]*MonthTotals)
	var keys []key
	for _, tx := range txns {
		k := key{tx.Date.Year(), tx.Date.Month()}
		mt, ok := totals[k]
		if !ok {
			mt = &MonthTotals{Month: tx.Date.Format("Jan 2006"), Income: decimal.Zero, Expenses: decimal.Zero}
			totals[k] = mt
			keys = append(keys, k)
		}
		amt := tx.Amount.In(target)
		if tx.Type == core.Income {
			mt.Income = mt.Income.Add(amt)
		} else {
			mt.Expenses = mt.Expenses.Add(amt)
		}
	}
	slices.SortFunc(keys, func(a, b key) int {
		if a.year != b.year {
			return a.year - b.year
		}
		return int(a.month) - int(b.month)
	})
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	out := make([]MonthTotals, 0, len(keys))
	for _, k := range keys {
		out = append(out, *totals[k])
	}
	return out
}

// TopCategories returns the n largest expense categories across owners.
func TopCategories(txns []core.Transaction, n int, target currency.Code) []CategoryShare {
	totals := make(map[string]decimal.Decimal)
	all := decimal.Zero
	for _, tx := range txns {
		if tx.Type != core.Expense {
			continue
		}
		amt := tx.Amount.In(target)
		totals[tx.Category] = totals[tx.Category].Add(amt)
		all = all.Add(amt)
	}
	return Top(shares(totals, all), n)
}

// UserActivity is the transaction volume of one owner.
type UserActivity struct {
	UserID       string          `json:"user_id"`
	Name         string          `json:"name"`
	Transactions int             `json:"transactions"`
	Total        decimal.Decimal `json:"total"`
}

// TopUsers ranks owners by transaction count. Names come from profiles;
// owners without a profile are reported as "Unknown".
func TopUsers(txns []core.Transaction, profiles []core.Profile, n int, target currency.Code) []UserActivity {
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Username
	}
	byUser := make(map[string]*UserActivity)
	for _, tx := range txns {
		ua, ok := byUser[tx.Owner]
		if !ok {
			name := names[tx.Owner]
			if name == "" {
				name = "Unknown"
			}
			ua = &UserActivity{UserID: tx.Owner, Name: name, Total: decimal.Zero}
			byUser[tx.Owner] = ua
		}
		ua.Transactions++
		ua.Total = ua.Total.Add(tx.Amount.In(target))
	}
	out := make([]UserActivity, 0, len(byUser))
	for _, ua := range byUser {
		out = append(out, *ua)
	}
	slices.SortFunc(out, func(a, b UserActivity) int {
		if a.Transactions != b.Transactions {
			return b.Transactions - a.Transactions
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
