package storage

import (
	"context"
	"fmt"

	"financeflow/internal/core"
)

const alertColumns = "id, user_id, category, period_start, percentage, spent, limit_amount, currency, created_at"

func (r *SQLRepository) CreateAlert(ctx context.Context, a core.BudgetAlert) (bool, error) {
	r.stamp(&a.ID, &a.CreatedAt)
	res, err := r.exec(ctx, r.db,
		"INSERT INTO budget_alerts ("+alertColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT (user_id, category, period_start) DO NOTHING",
		a.ID, a.Owner, a.Category, formatDate(a.PeriodStart), a.Percentage, a.Spent, a.Limit,
		string(a.Currency), formatTime(a.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("insert budget alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAlerts returns the owner's alerts newest first.
func (r *SQLRepository) ListAlerts(ctx context.Context, owner string) ([]core.BudgetAlert, error) {
	rows, err := r.query(ctx, r.db, "SELECT "+alertColumns+" FROM budget_alerts WHERE user_id = ? ORDER BY created_at DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("list budget alerts: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetAlert
	for rows.Next() {
		var (
			a                   core.BudgetAlert
			start, cur, created string
		)
		if err := rows.Scan(&a.ID, &a.Owner, &a.Category, &start, &a.Percentage, &a.Spent, &a.Limit, &cur, &created); err != nil {
			return nil, fmt.Errorf("scan budget alert: %w", err)
		}
		a.Currency = currencyCode(cur)
		if a.PeriodStart, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("parse alert period_start: %w", err)
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse alert created_at: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
