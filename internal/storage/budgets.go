package storage

import (
	"context"
	"fmt"

	"financeflow/internal/core"
)

const budgetColumns = "id, user_id, category, limit_amount, currency, period, created_at"

func (r *SQLRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	r.stamp(&b.ID, &b.CreatedAt)
	_, err := r.exec(ctx, r.db, "INSERT INTO budgets ("+budgetColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.Owner, b.Category, b.Limit.Amount, string(b.Limit.Currency), string(b.Period), formatTime(b.CreatedAt))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns the owner's budgets newest first.
func (r *SQLRepository) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	rows, err := r.query(ctx, r.db, "SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? ORDER BY created_at DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b                    core.Budget
			cur, period, created string
		)
		if err := rows.Scan(&b.ID, &b.Owner, &b.Category, &b.Limit.Amount, &cur, &period, &created); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Limit.Currency = currencyCode(cur)
		b.Period = core.BudgetPeriod(period)
		if b.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse budget created_at: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLRepository) DeleteBudget(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "budgets", owner, id)
}

func (r *SQLRepository) ListBudgetOwners(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, r.db, "SELECT DISTINCT user_id FROM budgets ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list budget owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan budget owner: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
