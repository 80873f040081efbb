package storage

import (
	"context"
	"fmt"

	"financeflow/internal/core"
)

const (
	holdingColumns = "id, user_id, type, name, value, currency, category, date, notes, created_at"
	accountColumns = "id, user_id, name, type, balance, currency, created_at"
)

func (r *SQLRepository) CreateAssetLiability(ctx context.Context, a core.AssetLiability) (core.AssetLiability, error) {
	r.stamp(&a.ID, &a.CreatedAt)
	_, err := r.exec(ctx, r.db, "INSERT INTO assets_liabilities ("+holdingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.Owner, string(a.Type), a.Name, a.Value.Amount, string(a.Value.Currency), a.Category,
		formatDate(a.Date), a.Notes, formatTime(a.CreatedAt))
	if err != nil {
		return core.AssetLiability{}, fmt.Errorf("insert asset/liability: %w", err)
	}
	return a, nil
}

// ListAssetsLiabilities returns the owner's entries oldest date first.
func (r *SQLRepository) ListAssetsLiabilities(ctx context.Context, owner string) ([]core.AssetLiability, error) {
	rows, err := r.query(ctx, r.db, "SELECT "+holdingColumns+" FROM assets_liabilities WHERE user_id = ? ORDER BY date, created_at", owner)
	if err != nil {
		return nil, fmt.Errorf("list assets/liabilities: %w", err)
	}
	defer rows.Close()

	var out []core.AssetLiability
	for rows.Next() {
		var (
			a                       core.AssetLiability
			typ, cur, date, created string
		)
		if err := rows.Scan(&a.ID, &a.Owner, &typ, &a.Name, &a.Value.Amount, &cur, &a.Category, &date, &a.Notes, &created); err != nil {
			return nil, fmt.Errorf("scan asset/liability: %w", err)
		}
		a.Type = core.HoldingType(typ)
		a.Value.Currency = currencyCode(cur)
		if a.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("parse asset/liability date: %w", err)
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse asset/liability created_at: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLRepository) DeleteAssetLiability(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "assets_liabilities", owner, id)
}

func (r *SQLRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	r.stamp(&a.ID, &a.CreatedAt)
	_, err := r.exec(ctx, r.db, "INSERT INTO accounts ("+accountColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.Owner, a.Name, string(a.Type), a.Balance.Amount, string(a.Balance.Currency), formatTime(a.CreatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *SQLRepository) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	rows, err := r.query(ctx, r.db, "SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY created_at", owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a                 core.Account
			typ, cur, created string
		)
		if err := rows.Scan(&a.ID, &a.Owner, &a.Name, &typ, &a.Balance.Amount, &cur, &created); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		a.Balance.Currency = currencyCode(cur)
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse account created_at: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
