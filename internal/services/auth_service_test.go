package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Drew466/auth-server-tbot/internal/domain"
)

// stubAuthRepo implements AuthRepo with function fields.
type stubAuthRepo struct {
	getGrant    func(ctx context.Context, db *gorm.DB, userID int64) (*domain.AuthGrant, error)
	upsertGrant func(ctx context.Context, db *gorm.DB, userID int64, until time.Time) error
}

func (s *stubAuthRepo) GetGrant(ctx context.Context, db *gorm.DB, userID int64) (*domain.AuthGrant, error) {
	return s.getGrant(ctx, db, userID)
}

func (s *stubAuthRepo) UpsertGrant(ctx context.Context, db *gorm.DB, userID int64, until time.Time) error {
	return s.upsertGrant(ctx, db, userID, until)
}

// memAuthRepo is an in-memory AuthRepo for lifecycle tests.
type memAuthRepo struct {
	grants map[int64]time.Time
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{grants: map[int64]time.Time{}}
}

func (m *memAuthRepo) GetGrant(_ context.Context, _ *gorm.DB, userID int64) (*domain.AuthGrant, error) {
	until, found := m.grants[userID]
	if !found {
		return nil, gorm.ErrRecordNotFound
	}
	return &domain.AuthGrant{UserID: userID, AuthorizedUntil: until}, nil
}

func (m *memAuthRepo) UpsertGrant(_ context.Context, _ *gorm.DB, userID int64, until time.Time) error {
	m.grants[userID] = until
	return nil
}

func TestIsAuthorized_NoRecord_FalseWithoutError(t *testing.T) {
	svc := NewAuthService(nil, newMemAuthRepo(), 120*24*time.Hour)

	authorized, err := svc.IsAuthorized(context.Background(), 42)
	if err != nil {
		t.Fatalf("IsAuthorized: %v", err)
	}
	if authorized {
		t.Fatalf("user without a grant must not be authorized")
	}
}

func TestIsAuthorized_RepoError_Propagates(t *testing.T) {
	boom := errors.New("db down")
	svc := NewAuthService(nil, &stubAuthRepo{
		getGrant: func(context.Context, *gorm.DB, int64) (*domain.AuthGrant, error) {
			return nil, boom
		},
	}, time.Hour)

	authorized, err := svc.IsAuthorized(context.Background(), 1)
	if authorized {
		t.Fatalf("expected not authorized on repo error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestAuthorize_GrantLifecycle(t *testing.T) {
	repo := newMemAuthRepo()
	svc := NewAuthService(nil, repo, 120*24*time.Hour)

	// Deterministic clock, advanced by the test.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	ctx := context.Background()

	if authorized, err := svc.IsAuthorized(ctx, 42); err != nil || authorized {
		t.Fatalf("before grant: authorized=%v err=%v", authorized, err)
	}

	if err := svc.Authorize(ctx, 42); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if authorized, err := svc.IsAuthorized(ctx, 42); err != nil || !authorized {
		t.Fatalf("after grant: authorized=%v err=%v", authorized, err)
	}

	// One day short of expiry the grant still holds.
	now = now.Add(119 * 24 * time.Hour)
	if authorized, err := svc.IsAuthorized(ctx, 42); err != nil || !authorized {
		t.Fatalf("day 119: authorized=%v err=%v", authorized, err)
	}

	// Past the window the grant expires.
	now = now.Add(2 * 24 * time.Hour)
	if authorized, err := svc.IsAuthorized(ctx, 42); err != nil || authorized {
		t.Fatalf("day 121: authorized=%v err=%v", authorized, err)
	}
}

func TestAuthorize_ReplacesGrantInsteadOfExtending(t *testing.T) {
	repo := newMemAuthRepo()
	svc := NewAuthService(nil, repo, time.Hour)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	ctx := context.Background()
	if err := svc.Authorize(ctx, 9); err != nil {
		t.Fatalf("first Authorize: %v", err)
	}

	now = now.Add(30 * time.Minute)
	if err := svc.Authorize(ctx, 9); err != nil {
		t.Fatalf("second Authorize: %v", err)
	}

	want := now.Add(time.Hour)
	if got := repo.grants[9]; !got.Equal(want) {
		t.Fatalf("grant expiry = %v, want %v (now + window, not stacked)", got, want)
	}
}

func TestIsAuthorized_ExpiryBoundaryIsStrict(t *testing.T) {
	repo := newMemAuthRepo()
	svc := NewAuthService(nil, repo, time.Hour)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	ctx := context.Background()
	if err := svc.Authorize(ctx, 5); err != nil {
		t.Fatalf("Authorize: %v", err)
	}

	// Exactly at expiry the grant no longer holds.
	now = now.Add(time.Hour)
	if authorized, err := svc.IsAuthorized(ctx, 5); err != nil || authorized {
		t.Fatalf("at expiry instant: authorized=%v err=%v", authorized, err)
	}
}
