package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"financeflow/internal/core"
)

const (
	loanColumns    = "id, user_id, name, type, principal_amount, interest_rate, tenure_months, start_date, due_day, emi_amount, outstanding_balance, status, currency, notes, created_at"
	paymentColumns = "id, user_id, loan_id, payment_date, amount, principal_paid, interest_paid, currency, status, notes, created_at"
)

func (r *SQLRepository) CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	r.stamp(&l.ID, &l.CreatedAt)
	_, err := r.exec(ctx, r.db, "INSERT INTO loans ("+loanColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		l.ID, l.Owner, l.Name, string(l.Type), l.PrincipalAmount, l.InterestRate, l.TenureMonths,
		formatDate(l.StartDate), l.DueDay, l.EMIAmount, l.OutstandingBalance, string(l.Status),
		string(l.Currency), l.Notes, formatTime(l.CreatedAt))
	if err != nil {
		return core.Loan{}, fmt.Errorf("insert loan: %w", err)
	}
	return l, nil
}

func (r *SQLRepository) GetLoan(ctx context.Context, owner, id string) (core.Loan, error) {
	row := r.queryRow(ctx, r.db, "SELECT "+loanColumns+" FROM loans WHERE id = ? AND user_id = ?", id, owner)
	l, err := scanLoan(row)
	if err != nil {
		return core.Loan{}, notFound(err)
	}
	return l, nil
}

func (r *SQLRepository) ListLoans(ctx context.Context, owner string) ([]core.Loan, error) {
	rows, err := r.query(ctx, r.db, "SELECT "+loanColumns+" FROM loans WHERE user_id = ? ORDER BY created_at DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []core.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListLoanPayments returns matching payments, newest payment date first.
func (r *SQLRepository) ListLoanPayments(ctx context.Context, q Query) ([]core.LoanPayment, error) {
	var w where
	if q.Owner != "" {
		w.add("user_id = ?", q.Owner)
	}
	if q.LoanID != "" {
		w.add("loan_id = ?", q.LoanID)
	}
	if q.HasWindow() {
		from, to := dateBounds(q.Window)
		w.add("payment_date >= ? AND payment_date <= ?", from, to)
	}
	rows, err := r.query(ctx, r.db, "SELECT "+paymentColumns+" FROM loan_payments"+w.String()+" ORDER BY payment_date DESC, created_at DESC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list loan payments: %w", err)
	}
	defer rows.Close()

	var out []core.LoanPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLRepository) RecordLoanPayment(ctx context.Context, prev, next core.Loan, p core.LoanPayment) (core.LoanPayment, error) {
	r.stamp(&p.ID, &p.CreatedAt)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := r.exec(ctx, tx,
			"UPDATE loans SET outstanding_balance = ?, status = ? WHERE id = ? AND user_id = ? AND status = ? AND outstanding_balance = ?",
			next.OutstandingBalance, string(next.Status), prev.ID, prev.Owner, string(prev.Status), prev.OutstandingBalance)
		if err != nil {
			return fmt.Errorf("update loan: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if n == 0 {
			return ErrConflict
		}

		_, err = r.exec(ctx, tx, "INSERT INTO loan_payments ("+paymentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.Owner, p.LoanID, formatDate(p.PaymentDate), p.Amount, p.PrincipalPaid, p.InterestPaid,
			string(p.Currency), p.Status, p.Notes, formatTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert loan payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.LoanPayment{}, err
	}
	slog.InfoContext(ctx, "Loan payment recorded",
		"loan_id", p.LoanID,
		"payment_id", p.ID,
		"amount", p.Amount.String(),
		"new_balance", next.OutstandingBalance.String(),
		"status", next.Status)
	return p, nil
}

func scanLoan(s scanner) (core.Loan, error) {
	var (
		l                                core.Loan
		typ, start, status, cur, created string
	)
	if err := s.Scan(&l.ID, &l.Owner, &l.Name, &typ, &l.PrincipalAmount, &l.InterestRate, &l.TenureMonths,
		&start, &l.DueDay, &l.EMIAmount, &l.OutstandingBalance, &status, &cur, &l.Notes, &created); err != nil {
		return l, fmt.Errorf("scan loan: %w", err)
	}
	l.Type = core.LoanType(typ)
	l.Status = core.LoanStatus(status)
	l.Currency = currencyCode(cur)
	var err error
	if l.StartDate, err = parseDate(start); err != nil {
		return l, fmt.Errorf("parse loan start_date: %w", err)
	}
	if l.CreatedAt, err = parseTime(created); err != nil {
		return l, fmt.Errorf("parse loan created_at: %w", err)
	}
	return l, nil
}

func scanPayment(s scanner) (core.LoanPayment, error) {
	var (
		p                  core.LoanPayment
		date, cur, created string
	)
	if err := s.Scan(&p.ID, &p.Owner, &p.LoanID, &date, &p.Amount, &p.PrincipalPaid, &p.InterestPaid,
		&cur, &p.Status, &p.Notes, &created); err != nil {
		return p, fmt.Errorf("scan loan payment: %w", err)
	}
	p.Currency = currencyCode(cur)
	var err error
	if p.PaymentDate, err = parseDate(date); err != nil {
		return p, fmt.Errorf("parse payment_date: %w", err)
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, fmt.Errorf("parse payment created_at: %w", err)
	}
	return p, nil
}
