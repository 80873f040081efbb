package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"financeflow/internal/core"
)

const billColumns = "id, user_id, name, amount, currency, category, due_date, frequency, reminder_days, is_active, is_paid, paid_at, created_at"

func (r *SQLRepository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	r.stamp(&b.ID, &b.CreatedAt)
	_, err := r.exec(ctx, r.db, "INSERT INTO bills ("+billColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.Owner, b.Name, b.Amount.Amount, string(b.Amount.Currency), b.Category,
		formatDate(b.DueDate), string(b.Frequency), b.ReminderDays, b.IsActive, b.IsPaid,
		nullTime(b.PaidAt), formatTime(b.CreatedAt))
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	return b, nil
}

func (r *SQLRepository) GetBill(ctx context.Context, owner, id string) (core.Bill, error) {
	row := r.queryRow(ctx, r.db, "SELECT "+billColumns+" FROM bills WHERE id = ? AND user_id = ?", id, owner)
	b, err := scanBill(row)
	if err != nil {
		return core.Bill{}, notFound(err)
	}
	return b, nil
}

// ListBills returns the owner's bills ordered by due date.
func (r *SQLRepository) ListBills(ctx context.Context, owner string) ([]core.Bill, error) {
	return r.listBills(ctx, "SELECT "+billColumns+" FROM bills WHERE user_id = ? ORDER BY due_date", owner)
}

func (r *SQLRepository) ListPaidBills(ctx context.Context, q Query) ([]core.Bill, error) {
	var w where
	w.add("paid_at IS NOT NULL")
	if q.Owner != "" {
		w.add("user_id = ?", q.Owner)
	}
	if q.HasWindow() {
		from, to := timeBounds(q.Window)
		w.add("paid_at >= ? AND paid_at <= ?", from, to)
	}
	return r.listBills(ctx, "SELECT "+billColumns+" FROM bills"+w.String()+" ORDER BY paid_at DESC", w.args...)
}

func (r *SQLRepository) listBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := r.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLRepository) PayBill(ctx context.Context, prev, b core.Bill, expense core.Transaction) (core.Bill, core.Transaction, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := r.exec(ctx, tx, "UPDATE bills SET due_date = ?, is_paid = ?, paid_at = ? WHERE id = ? AND user_id = ? AND due_date = ?",
			formatDate(b.DueDate), b.IsPaid, nullTime(b.PaidAt), prev.ID, prev.Owner, formatDate(prev.DueDate))
		if err != nil {
			return fmt.Errorf("update bill: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if n == 0 {
			return r.billMissingOrMoved(ctx, tx, prev)
		}
		return r.insertTransaction(ctx, tx, &expense)
	})
	if err != nil {
		return core.Bill{}, core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Bill paid",
		"bill_id", b.ID,
		"user_id", b.Owner,
		"next_due", b.DueDate.String(),
		"transaction_id", expense.ID)
	return b, expense, nil
}

// billMissingOrMoved explains a guarded bill update that touched no row.
func (r *SQLRepository) billMissingOrMoved(ctx context.Context, tx *sql.Tx, prev core.Bill) error {
	var one int
	err := r.queryRow(ctx, tx, "SELECT 1 FROM bills WHERE id = ? AND user_id = ?", prev.ID, prev.Owner).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.ErrNotFound
	case err != nil:
		return fmt.Errorf("check bill: %w", err)
	}
	return ErrConflict
}

func (r *SQLRepository) DeleteBill(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "bills", owner, id)
}

func scanBill(s scanner) (core.Bill, error) {
	var (
		b                       core.Bill
		cur, due, freq, created string
		paidAt                  sql.NullString
	)
	if err := s.Scan(&b.ID, &b.Owner, &b.Name, &b.Amount.Amount, &cur, &b.Category, &due, &freq,
		&b.ReminderDays, &b.IsActive, &b.IsPaid, &paidAt, &created); err != nil {
		return b, fmt.Errorf("scan bill: %w", err)
	}
	b.Amount.Currency = currencyCode(cur)
	b.Frequency = core.Frequency(freq)
	var err error
	if b.DueDate, err = parseDate(due); err != nil {
		return b, fmt.Errorf("parse bill due_date: %w", err)
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return b, fmt.Errorf("parse bill paid_at: %w", err)
		}
		b.PaidAt = &t
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return b, fmt.Errorf("parse bill created_at: %w", err)
	}
	return b, nil
}
