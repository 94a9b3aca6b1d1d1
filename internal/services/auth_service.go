// Package services – AuthService
//
// This file implements AuthService, which owns the authorization-grant
// lifecycle. A single grants table backs every write path: the web
// /authorize route and any operator-driven grant both call Authorize, and
// both the bot and the /check route call IsAuthorized. The grant window is
// configurable and defaults to 120 days (numerically equal to the legacy
// "4 months × 30 days" grant).
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Drew466/auth-server-tbot/internal/domain"
)

// AuthRepo defines the repository contract required by AuthService.
type AuthRepo interface {
	// GetGrant fetches the grant row for a user, or repo.ErrNotFound.
	GetGrant(ctx context.Context, db *gorm.DB, userID int64) (*domain.AuthGrant, error)

	// UpsertGrant creates or replaces the grant for a user.
	UpsertGrant(ctx context.Context, db *gorm.DB, userID int64, until time.Time) error
}

// AuthService answers "is this user currently authorized?" and records new
// grants. It makes no distinction between "never authorized" and
// "authorization expired"; both report not-authorized.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the grant repository used by this service.
	Repo AuthRepo
	// Window is how long a new grant stays valid.
	Window time.Duration
	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// NewAuthService constructs an AuthService with the given grant window.
func NewAuthService(db *gorm.DB, r AuthRepo, window time.Duration) *AuthService {
	return &AuthService{
		DB:     db,
		Repo:   r,
		Window: window,
		Now:    time.Now,
	}
}

// IsAuthorized reports whether userID holds a grant whose expiry is strictly
// in the future. A missing row is not an error.
func (s *AuthService) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	g, err := s.Repo.GetGrant(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return g.AuthorizedUntil.After(s.Now()), nil
}

// Authorize grants userID access until now + Window, replacing any prior
// grant. It never extends an existing grant.
func (s *AuthService) Authorize(ctx context.Context, userID int64) error {
	return s.Repo.UpsertGrant(ctx, s.DB, userID, s.Now().Add(s.Window))
}
