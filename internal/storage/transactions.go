package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"financeflow/internal/core"
)

const transactionColumns = "id, user_id, type, category, description, amount, currency, date, account_id, bill_id, created_at"

func (r *SQLRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := r.insertTransaction(ctx, r.db, &t); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.Owner,
		"type", t.Type,
		"category", t.Category,
		"amount", t.Amount.Amount.String(),
		"currency", t.Amount.Currency)
	return t, nil
}

func (r *SQLRepository) insertTransaction(ctx context.Context, q querier, t *core.Transaction) error {
	r.stamp(&t.ID, &t.CreatedAt)
	_, err := r.exec(ctx, q, "INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Owner, string(t.Type), t.Category, t.Description,
		t.Amount.Amount, string(t.Amount.Currency), formatDate(t.Date),
		nullString(t.AccountID), nullString(t.BillID), formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns matching transactions newest first.
func (r *SQLRepository) ListTransactions(ctx context.Context, q Query) ([]core.Transaction, error) {
	var w where
	if q.Owner != "" {
		w.add("user_id = ?", q.Owner)
	}
	if q.Type != "" {
		w.add("type = ?", string(q.Type))
	}
	if q.HasWindow() {
		from, to := dateBounds(q.Window)
		w.add("date >= ? AND date <= ?", from, to)
	}
	rows, err := r.query(ctx, r.db, "SELECT "+transactionColumns+" FROM transactions"+w.String()+" ORDER BY date DESC, created_at DESC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLRepository) DeleteTransaction(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "transactions", owner, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                core.Transaction
		typ, cur         string
		date, created    string
		account, billRef sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Owner, &typ, &t.Category, &t.Description, &t.Amount.Amount, &cur, &date, &account, &billRef, &created); err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Amount.Currency = currencyCode(cur)
	t.AccountID = account.String
	t.BillID = billRef.String
	var err error
	if t.Date, err = parseDate(date); err != nil {
		return t, fmt.Errorf("parse transaction date: %w", err)
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return t, fmt.Errorf("parse transaction created_at: %w", err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
