package main

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Drew466/auth-server-tbot/internal/domain"
	"github.com/Drew466/auth-server-tbot/internal/repo"
)

// authRepo adapts the repository free functions to services.AuthRepo.
type authRepo struct{}

func (authRepo) GetGrant(ctx context.Context, db *gorm.DB, userID int64) (*domain.AuthGrant, error) {
	return repo.GetGrant(ctx, db, userID)
}

func (authRepo) UpsertGrant(ctx context.Context, db *gorm.DB, userID int64, until time.Time) error {
	return repo.UpsertGrant(ctx, db, userID, until)
}

// knowledgeRepo adapts the repository free functions to services.KnowledgeRepo.
type knowledgeRepo struct{}

func (knowledgeRepo) FindAnswer(ctx context.Context, db *gorm.DB, question string) (string, error) {
	return repo.FindAnswer(ctx, db, question)
}

func (knowledgeRepo) InsertAnswer(ctx context.Context, db *gorm.DB, question, answer string) error {
	return repo.InsertAnswer(ctx, db, question, answer)
}

func (knowledgeRepo) SearchRelated(ctx context.Context, db *gorm.DB, query string, limit int) ([]string, error) {
	return repo.SearchRelated(ctx, db, query, limit)
}
