// Package services – KnowledgeService
//
// This file implements KnowledgeService, the flat exact-match question/answer
// store consulted before the external language model. Lookup is exact and
// case-sensitive; "related" search is raw substring containment capped at
// three results. Neither operation ranks, normalizes, or fuzzes; the store
// is intentionally this simple.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// RelatedLimit caps the number of related-question suggestions.
const RelatedLimit = 3

// KnowledgeRepo defines the repository contract required by KnowledgeService.
type KnowledgeRepo interface {
	FindAnswer(ctx context.Context, db *gorm.DB, question string) (string, error)
	InsertAnswer(ctx context.Context, db *gorm.DB, question, answer string) error
	SearchRelated(ctx context.Context, db *gorm.DB, query string, limit int) ([]string, error)
}

// KnowledgeService wraps the persisted question/answer store.
type KnowledgeService struct {
	DB   *gorm.DB
	Repo KnowledgeRepo
}

// NewKnowledgeService constructs a KnowledgeService.
func NewKnowledgeService(db *gorm.DB, r KnowledgeRepo) *KnowledgeService {
	return &KnowledgeService{DB: db, Repo: r}
}

// Search returns the stored answer for an exact question match. The second
// return value reports whether an entry was found; absence is not an error.
func (s *KnowledgeService) Search(ctx context.Context, question string) (string, bool, error) {
	answer, err := s.Repo.FindAnswer(ctx, s.DB, question)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return answer, true, nil
}

// Save stores a question/answer pair. Saving a question that already exists
// is a silent no-op: the first answer wins.
func (s *KnowledgeService) Save(ctx context.Context, question, answer string) error {
	if question == "" {
		return ErrEmptyQuestion
	}
	return s.Repo.InsertAnswer(ctx, s.DB, question, answer)
}

// Related returns up to RelatedLimit stored questions containing query as a
// substring, in insertion order. The query question itself is not filtered
// out when it has been stored.
func (s *KnowledgeService) Related(ctx context.Context, query string) ([]string, error) {
	return s.Repo.SearchRelated(ctx, s.DB, query, RelatedLimit)
}
