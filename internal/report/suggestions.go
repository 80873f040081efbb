package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"financeflow/internal/budget"
	"financeflow/internal/currency"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// SuggestionInput is what the rules look at. Budgets and Summary must be
// expressed in the same currency.
type SuggestionInput struct {
	Budgets []budget.CategorySpend
	Summary Summary
}

type rule func(SuggestionInput) []Suggestion

var (
	watchLow        = 75.0
	watchHigh       = 90.0
	investAbove     = decimal.NewFromInt(1000)
	optimizeAbove   = decimal.NewFromInt(200)
	defaultAdvice   = Suggestion{Title: "Great Financial Health!", Description: "Keep up the good work managing your finances.", Priority: PriorityLow}
	suggestionRules = []rule{watchBudgets, investSavings, optimizeTopCategory}
)

// Suggest applies the rule table in order. When no rule fires the single
// default suggestion is returned.
func Suggest(in SuggestionInput) []Suggestion {
	var out []Suggestion
	for _, r := range suggestionRules {
		out = append(out, r(in)...)
	}
	if len(out) == 0 {
		return []Suggestion{defaultAdvice}
	}
	return out
}

func watchBudgets(in SuggestionInput) []Suggestion {
	var out []Suggestion
	for _, b := range in.Budgets {
		used := budget.UsedPercent(b.Spent, b.Limit)
		if used.LessThan(decimal.NewFromFloat(watchLow)) || used.GreaterThanOrEqual(decimal.NewFromFloat(watchHigh)) {
			continue
		}
		pct := budget.Percentage(b.Spent, b.Limit)
		out = append(out, Suggestion{
			Title: fmt.Sprintf("Watch %s Spending", b.Category),
			Description: fmt.Sprintf("You've spent %.0f%% of your %s budget (%s of %s).",
				pct, b.Category, currency.FormatIn(b.Spent, b.Currency), currency.FormatIn(b.Limit, b.Currency)),
			Priority: PriorityMedium,
		})
	}
	return out
}

func investSavings(in SuggestionInput) []Suggestion {
	if !in.Summary.NetSavings.GreaterThan(investAbove) {
		return nil
	}
	return []Suggestion{{
		Title: "Investment Opportunity",
		Description: fmt.Sprintf("You have %s in savings this period. Consider investing for better returns.",
			currency.FormatIn(in.Summary.NetSavings, in.Summary.Currency)),
		Priority: PriorityHigh,
	}}
}

func optimizeTopCategory(in SuggestionInput) []Suggestion {
	if len(in.Summary.CategoryBreakdown) == 0 {
		return nil
	}
	top := in.Summary.CategoryBreakdown[0]
	if !top.Amount.GreaterThan(optimizeAbove) {
		return nil
	}
	return []Suggestion{{
		Title: fmt.Sprintf("Optimize %s Spending", top.Category),
		Description: fmt.Sprintf("%s is your highest expense category at %s. Look for ways to reduce costs.",
			top.Category, currency.FormatIn(top.Amount, in.Summary.Currency)),
		Priority: PriorityLow,
	}}
}
