package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// Severity grades how close spend is to the limit.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	WarningPercent  = 50.0
	CriticalPercent = 90.0

	// DefaultAlertPercent is the spend level that triggers a notification.
	DefaultAlertPercent = 80.0
)

// Status is the evaluation of one CategorySpend.
type Status struct {
	Percentage  float64         `json:"percentage"`
	Remaining   decimal.Decimal `json:"remaining"`
	Severity    Severity        `json:"severity"`
	OverBudget  bool            `json:"over_budget"`
	ShouldAlert bool            `json:"should_alert"`
}

// UsedPercent returns spent/limit*100 unrounded, or 0 when the limit is not
// positive. Thresholds are compared against this value.
func UsedPercent(spent, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}
	return spent.Div(limit).Mul(decimal.NewFromInt(100))
}

// Percentage is UsedPercent rounded to two places for display.
func Percentage(spent, limit decimal.Decimal) float64 {
	pct, _ := UsedPercent(spent, limit).Round(2).Float64()
	return pct
}

func reaches(pct decimal.Decimal, threshold float64) bool {
	return pct.GreaterThanOrEqual(decimal.NewFromFloat(threshold))
}

// Evaluate grades s. alertPercent <= 0 uses DefaultAlertPercent.
func Evaluate(s CategorySpend, alertPercent float64) Status {
	if alertPercent <= 0 {
		alertPercent = DefaultAlertPercent
	}
	used := UsedPercent(s.Spent, s.Limit)
	sev := SeverityOK
	switch {
	case reaches(used, CriticalPercent):
		sev = SeverityCritical
	case reaches(used, WarningPercent):
		sev = SeverityWarning
	}
	return Status{
		Percentage:  Percentage(s.Spent, s.Limit),
		Remaining:   s.Limit.Sub(s.Spent),
		Severity:    sev,
		OverBudget:  s.Spent.GreaterThan(s.Limit),
		ShouldAlert: s.Limit.IsPositive() && reaches(used, alertPercent),
	}
}

// PeriodWindow returns the window of the budget period containing now.
func PeriodWindow(p core.BudgetPeriod, now time.Time) core.Window {
	switch p {
	case core.PeriodWeekly:
		return core.WeekWindow(now)
	case core.PeriodYearly:
		return core.YearWindow(now)
	default:
		return core.MonthWindow(now)
	}
}

// Alert is the payload handed to the notification collaborator.
type Alert struct {
	Category   string          `json:"category"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Percentage float64         `json:"percentage"`
	Currency   currency.Code   `json:"currency"`
	Critical   bool            `json:"critical"`
}

// NewAlert builds the alert for s.
func NewAlert(s CategorySpend) Alert {
	pct := Percentage(s.Spent, s.Limit)
	return Alert{
		Category:   s.Category,
		Spent:      s.Spent,
		Limit:      s.Limit,
		Percentage: pct,
		Currency:   s.Currency,
		Critical:   pct >= CriticalPercent,
	}
}

// Subject is the notification subject line.
func (a Alert) Subject() string {
	return fmt.Sprintf("Budget Alert: %s - %.0f%% Used", a.Category, a.Percentage)
}

// Body is a plain text summary of the alert.
func (a Alert) Body() string {
	level := "Warning"
	if a.Critical {
		level = "Critical Alert"
	}
	remaining := a.Limit.Sub(a.Spent)
	sign := ""
	if remaining.IsNegative() {
		sign = "-"
	}
	body := fmt.Sprintf("%s: you've used %.0f%% of your %s budget.\n\nSpent: %s\nBudget Limit: %s\nRemaining: %s%s\n",
		level, a.Percentage, a.Category,
		currency.FormatIn(a.Spent, a.Currency),
		currency.FormatIn(a.Limit, a.Currency),
		sign, currency.FormatIn(remaining, a.Currency))
	if a.Critical {
		body += "\nAction Required: you've reached a critical spending level. Consider reviewing your expenses or adjusting your budget.\n"
	}
	return body
}
