package storage

import (
	"context"
	"fmt"

	"financeflow/internal/core"
)

const profileColumns = "id, email, full_name, username, email_alerts_enabled, created_at"

func (r *SQLRepository) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if p.ID == "" {
		return core.Profile{}, core.ErrEmptyOwner
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}
	_, err := r.exec(ctx, r.db,
		"INSERT INTO profiles ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT (id) DO UPDATE SET email = excluded.email, full_name = excluded.full_name, "+
			"username = excluded.username, email_alerts_enabled = excluded.email_alerts_enabled",
		p.ID, p.Email, p.FullName, p.Username, p.EmailAlertsEnabled, formatTime(p.CreatedAt))
	if err != nil {
		return core.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return r.GetProfile(ctx, p.ID)
}

func (r *SQLRepository) GetProfile(ctx context.Context, id string) (core.Profile, error) {
	row := r.queryRow(ctx, r.db, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	p, err := scanProfile(row)
	if err != nil {
		return core.Profile{}, notFound(err)
	}
	return p, nil
}

func (r *SQLRepository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.query(ctx, r.db, "SELECT "+profileColumns+" FROM profiles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(s scanner) (core.Profile, error) {
	var (
		p       core.Profile
		created string
	)
	if err := s.Scan(&p.ID, &p.Email, &p.FullName, &p.Username, &p.EmailAlertsEnabled, &created); err != nil {
		return p, fmt.Errorf("scan profile: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, fmt.Errorf("parse profile created_at: %w", err)
	}
	return p, nil
}
