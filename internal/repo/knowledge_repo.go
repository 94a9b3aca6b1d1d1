// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// KnowledgeEntry model.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Drew466/auth-server-tbot/internal/domain"
)

// FindAnswer returns the stored answer for an exact, case-sensitive question
// match, or ErrNotFound when no entry exists. SQLite LIKE is case-insensitive
// for ASCII, so the lookup deliberately uses = on the unique question column.
func FindAnswer(ctx context.Context, db *gorm.DB, question string) (string, error) {
	var e domain.KnowledgeEntry
	err := db.WithContext(ctx).
		Where("question = ?", question).
		First(&e).Error
	if err != nil {
		return "", err
	}
	return e.Answer, nil
}

// InsertAnswer stores a question/answer pair. If the question already exists
// the insert is a silent no-op: the first stored answer wins.
func InsertAnswer(ctx context.Context, db *gorm.DB, question, answer string) error {
	e := &domain.KnowledgeEntry{
		Question: question,
		Answer:   answer,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question"}},
			DoNothing: true,
		}).
		Create(e).Error
}

// SearchRelated returns up to limit stored questions containing query as a
// substring, in insertion order. This is plain substring containment
// without ranking or fuzzy matching, and may include the query question itself
// when it has been stored.
func SearchRelated(ctx context.Context, db *gorm.DB, query string, limit int) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.KnowledgeEntry{}).
		Where("question LIKE ? ESCAPE '\\'", "%"+escapeLike(query)+"%").
		Order("id ASC").
		Limit(limit).
		Pluck("question", &out).Error
	return out, err
}

// CountEntries returns the number of stored knowledge entries.
func CountEntries(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.KnowledgeEntry{}).Count(&total).Error
	return total, err
}

// escapeLike neutralizes LIKE wildcards in user text so a question containing
// "%" or "_" matches literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
