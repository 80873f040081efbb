package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"financeflow/internal/budget"
	"financeflow/internal/cache"
	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/report"
	"financeflow/internal/storage"
)

const (
	reportCacheSize  = 500
	topCategoryCount = 5
	adminTrendMonths = 6
	adminTopUsers    = 10
)

// BudgetView is one budget's spend and its evaluation.
type BudgetView struct {
	budget.CategorySpend
	Status budget.Status `json:"status"`
	Window core.Window   `json:"window"`
}

// Report is everything shown for one reporting period.
type Report struct {
	Period        report.Period          `json:"period"`
	Summary       report.Summary         `json:"summary"`
	TopCategories []report.CategoryShare `json:"top_categories"`
	Buckets       []report.Bucket        `json:"buckets"`
	Bills         report.BillsSummary    `json:"bills"`
	Loans         report.LoansSummary    `json:"loans"`
	Budgets       []BudgetView           `json:"budgets"`
	Suggestions   []report.Suggestion    `json:"suggestions"`
	Currency      currency.Code          `json:"currency"`
}

// NetWorthView is the current net worth plus its history.
type NetWorthView struct {
	report.NetWorth
	History []report.NetWorthPoint `json:"history"`
}

// AdminReport covers every owner.
type AdminReport struct {
	MonthlyTrends []report.MonthTotals   `json:"monthly_trends"`
	TopCategories []report.CategoryShare `json:"top_categories"`
	TopUsers      []report.UserActivity  `json:"top_users"`
	Currency      currency.Code          `json:"currency"`
}

// FinanceService answers the read side: budget overviews, reports and net
// worth, all converted into the caller's display currency.
type FinanceService struct {
	store        storage.Store
	reports      *cache.LRUCache[Report]
	alertPercent float64
	now          func() time.Time
}

// NewFinanceService caches reports for ttl; ttl <= 0 disables the cache.
func NewFinanceService(store storage.Store, alertPercent float64, ttl time.Duration) *FinanceService {
	s := &FinanceService{store: store, alertPercent: alertPercent, now: time.Now}
	if ttl > 0 {
		s.reports = cache.NewLRUCache[Report](reportCacheSize, ttl)
	}
	return s
}

// ReportCache exposes the report cache for registration with a cleanup
// manager. It is nil when caching is disabled.
func (s *FinanceService) ReportCache() *cache.LRUCache[Report] {
	return s.reports
}

func reportKey(owner string) string {
	return "report:" + owner + ":"
}

// Invalidate drops cached reports of owner.
func (s *FinanceService) Invalidate(owner string) {
	if s.reports == nil {
		return
	}
	if n := s.reports.DeletePrefix(reportKey(owner)); n > 0 {
		slog.Debug("Invalidated cached reports", "user_id", owner, "count", n)
	}
}

// BudgetOverview evaluates owner's budgets over their current periods. A
// non-empty period keeps only budgets of that period.
func (s *FinanceService) BudgetOverview(ctx context.Context, owner string, sess currency.Session, period core.BudgetPeriod) ([]BudgetView, error) {
	budgets, err := s.store.ListBudgets(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return s.overview(ctx, owner, sess, filterPeriod(budgets, period))
}

func (s *FinanceService) overview(ctx context.Context, owner string, sess currency.Session, budgets []core.Budget) ([]BudgetView, error) {
	groups, err := spendByPeriod(ctx, s.store, owner, budgets, s.now(), sess.Currency())
	if err != nil {
		return nil, err
	}
	out := make([]BudgetView, 0, len(budgets))
	for _, g := range groups {
		for _, spend := range g.Spend {
			out = append(out, BudgetView{
				CategorySpend: spend,
				Status:        budget.Evaluate(spend, s.alertPercent),
				Window:        g.Window,
			})
		}
	}
	return out, nil
}

func filterPeriod(budgets []core.Budget, period core.BudgetPeriod) []core.Budget {
	if period == "" {
		return budgets
	}
	var out []core.Budget
	for _, b := range budgets {
		if b.Period == period {
			out = append(out, b)
		}
	}
	return out
}

// CategoryItems lists what makes up the spend of category. The window is
// the period of the category's budget, monthly when it has none.
func (s *FinanceService) CategoryItems(ctx context.Context, owner string, sess currency.Session, category string) ([]budget.Item, core.Window, error) {
	budgets, err := s.store.ListBudgets(ctx, owner)
	if err != nil {
		return nil, core.Window{}, fmt.Errorf("list budgets: %w", err)
	}
	period := core.PeriodMonthly
	for _, b := range budgets {
		if b.Category == category {
			period = b.Period
			break
		}
	}
	w := budget.PeriodWindow(period, s.now())
	in, err := loadSpend(ctx, s.store, owner, w)
	if err != nil {
		return nil, core.Window{}, err
	}
	items := budget.Items(in, w, sess.Currency())[category]
	if items == nil {
		items = []budget.Item{}
	}
	return items, w, nil
}

// Report builds the report for a preset period name.
func (s *FinanceService) Report(ctx context.Context, owner string, sess currency.Session, preset string) (Report, error) {
	now := s.now()
	period, err := report.Preset(preset, now)
	if err != nil {
		return Report{}, err
	}

	key := reportKey(owner) + period.Name + ":" + string(sess.Currency())
	if s.reports != nil {
		if r, ok := s.reports.Get(key); ok {
			return r, nil
		}
	}

	var (
		txns     []core.Transaction
		bills    []core.Bill
		loans    []core.Loan
		payments []core.LoanPayment
		budgets  []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.store.ListTransactions(gctx, storage.Query{Owner: owner, Window: period.Window})
		return wrap("list transactions", err)
	})
	g.Go(func() error {
		var err error
		bills, err = s.store.ListBills(gctx, owner)
		return wrap("list bills", err)
	})
	g.Go(func() error {
		var err error
		loans, err = s.store.ListLoans(gctx, owner)
		return wrap("list loans", err)
	})
	g.Go(func() error {
		var err error
		payments, err = s.store.ListLoanPayments(gctx, storage.Query{Owner: owner, Window: period.Window})
		return wrap("list loan payments", err)
	})
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, owner)
		return wrap("list budgets", err)
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	target := sess.Currency()
	views, err := s.overview(ctx, owner, sess, budgets)
	if err != nil {
		return Report{}, err
	}

	budgetTotal := decimal.Zero
	spend := make([]budget.CategorySpend, 0, len(views))
	for _, v := range views {
		budgetTotal = budgetTotal.Add(v.Limit)
		spend = append(spend, v.CategorySpend)
	}

	summary := report.Summarize(txns, period.Window, target)
	series := append(slices.Clone(txns), report.LoanPaymentExpenses(payments)...)
	r := Report{
		Period:        period,
		Summary:       summary,
		TopCategories: report.Top(summary.CategoryBreakdown, topCategoryCount),
		Buckets:       report.BucketByTime(series, period.Window, period.Granularity, report.PerBucket, budgetTotal, target),
		Bills:         report.SummarizeBills(bills, now, target),
		Loans:         report.SummarizeLoans(loans, target),
		Budgets:       views,
		Suggestions:   report.Suggest(report.SuggestionInput{Budgets: spend, Summary: summary}),
		Currency:      target,
	}

	if s.reports != nil {
		s.reports.Set(key, r)
	}
	return r, nil
}

// NetWorth sums owner's assets and liabilities.
func (s *FinanceService) NetWorth(ctx context.Context, owner string, sess currency.Session) (NetWorthView, error) {
	items, err := s.store.ListAssetsLiabilities(ctx, owner)
	if err != nil {
		return NetWorthView{}, fmt.Errorf("list assets and liabilities: %w", err)
	}
	return NetWorthView{
		NetWorth: report.ComputeNetWorth(items, sess.Currency()),
		History:  report.NetWorthHistory(items, sess.Currency()),
	}, nil
}

// Admin reports across every owner.
func (s *FinanceService) Admin(ctx context.Context, sess currency.Session) (AdminReport, error) {
	var (
		txns     []core.Transaction
		profiles []core.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.store.ListTransactions(gctx, storage.Query{})
		return wrap("list transactions", err)
	})
	g.Go(func() error {
		var err error
		profiles, err = s.store.ListProfiles(gctx)
		return wrap("list profiles", err)
	})
	if err := g.Wait(); err != nil {
		return AdminReport{}, err
	}

	target := sess.Currency()
	return AdminReport{
		MonthlyTrends: report.MonthlyTrends(txns, adminTrendMonths, target),
		TopCategories: report.TopCategories(txns, topCategoryCount, target),
		TopUsers:      report.TopUsers(txns, profiles, adminTopUsers, target),
		Currency:      target,
	}, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
