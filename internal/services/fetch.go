package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"financeflow/internal/budget"
	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/storage"
)

// loadSpend reads everything that counts as spend for owner inside w. The
// three sources are fetched concurrently; any failure fails the whole load.
func loadSpend(ctx context.Context, store storage.Store, owner string, w core.Window) (budget.Input, error) {
	var in budget.Input
	q := storage.Query{Owner: owner, Window: w}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eq := q
		eq.Type = core.Expense
		txns, err := store.ListTransactions(ctx, eq)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		in.Transactions = txns
		return nil
	})
	g.Go(func() error {
		bills, err := store.ListPaidBills(ctx, q)
		if err != nil {
			return fmt.Errorf("load paid bills: %w", err)
		}
		in.Bills = bills
		return nil
	})
	g.Go(func() error {
		payments, err := store.ListLoanPayments(ctx, q)
		if err != nil {
			return fmt.Errorf("load loan payments: %w", err)
		}
		in.LoanPayments = payments
		return nil
	})
	if err := g.Wait(); err != nil {
		return budget.Input{}, err
	}
	return in, nil
}

// periodSpend is the aggregate of every budget of one period.
type periodSpend struct {
	Period core.BudgetPeriod
	Window core.Window
	Input  budget.Input
	Spend  []budget.CategorySpend
}

// spendByPeriod groups budgets by period and aggregates each group over the
// period window containing now. Groups keep the order in which their first
// budget appears.
func spendByPeriod(ctx context.Context, store storage.Store, owner string, budgets []core.Budget, now time.Time, target currency.Code) ([]periodSpend, error) {
	var groups []periodSpend
	index := map[core.BudgetPeriod]int{}
	for _, b := range budgets {
		i, ok := index[b.Period]
		if !ok {
			i = len(groups)
			index[b.Period] = i
			groups = append(groups, periodSpend{Period: b.Period, Window: budget.PeriodWindow(b.Period, now)})
		}
		groups[i].Input.Budgets = append(groups[i].Input.Budgets, b)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range groups {
		i := i // per-iteration copy; preserves go1.22+ loopvar semantics under go 1.21
		g.Go(func() error {
			in, err := loadSpend(gctx, store, owner, groups[i].Window)
			if err != nil {
				return fmt.Errorf("%s budgets: %w", groups[i].Period, err)
			}
			in.Budgets = groups[i].Input.Budgets
			groups[i].Input = in
			groups[i].Spend = budget.Aggregate(in, groups[i].Window, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}
