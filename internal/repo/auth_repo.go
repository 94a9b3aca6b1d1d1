// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the AuthGrant
// model.
//
// All functions accept a *gorm.DB handle and a context, making them safe for
// use within transactions or connection-scoped operations. They follow the
// "thin repository" approach: no business logic, only CRUD persistence.
//
// Error semantics:
//   - When a grant is not found, functions return gorm.ErrRecordNotFound
//     (exported as ErrNotFound in this package).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Drew466/auth-server-tbot/internal/domain"
)

// GetGrant fetches the authorization grant for a user, or ErrNotFound if the
// user has never been granted access.
func GetGrant(ctx context.Context, db *gorm.DB, userID int64) (*domain.AuthGrant, error) {
	var g domain.AuthGrant
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpsertGrant creates or replaces the grant for a user. A prior grant is
// overwritten, never extended.
func UpsertGrant(ctx context.Context, db *gorm.DB, userID int64, until time.Time) error {
	g := &domain.AuthGrant{
		UserID:          userID,
		AuthorizedUntil: until.UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"authorized_until", "updated_at"}),
		}).
		Create(g).Error
}

// CountGrants returns the total number of grant rows (expired ones included).
// Used by operational logging at startup.
func CountGrants(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.AuthGrant{}).Count(&total).Error
	return total, err
}

// ListGrantsPage returns a paginated slice of grants ordered by most recent
// update. Expired grants are included; this is an operational query, not an
// authorization check.
func ListGrantsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.AuthGrant, error) {
	var out []domain.AuthGrant
	err := db.WithContext(ctx).
		Order("updated_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
