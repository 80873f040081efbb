package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

// ProfileService stores per-owner notification settings.
type ProfileService struct {
	store storage.ProfileStore
}

func NewProfileService(store storage.ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// Save creates or replaces the profile of p.ID.
func (s *ProfileService) Save(ctx context.Context, p core.Profile) (core.Profile, error) {
	p.Email = strings.TrimSpace(p.Email)
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return core.Profile{}, core.ValidationErrors{{Field: "email", Err: core.ErrInvalidEmail, Msg: "Email address is invalid"}}
		}
	}
	saved, err := s.store.UpsertProfile(ctx, p)
	if err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return saved, nil
}

func (s *ProfileService) Get(ctx context.Context, owner string) (core.Profile, error) {
	return s.store.GetProfile(ctx, owner)
}
