// Package domain defines the persistence models for authorization grants and
// knowledge entries. These types are mapped with GORM and form the core data
// layer shared by the Telegram assistant and the web authorization server.
package domain

import "time"

// AuthGrant records a time-bounded access permission for a Telegram user.
// A user is authorized iff a grant exists and AuthorizedUntil is strictly
// in the future. Granting again replaces the row; it never extends it.
// Rows are never deleted; an elapsed grant simply becomes inert.
//
// Both write paths (the web /authorize route and the bot-side grant) land
// in this single table.
type AuthGrant struct {
	UserID          int64     `json:"user_id"          gorm:"primaryKey"`
	AuthorizedUntil time.Time `json:"authorized_until" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for AuthGrant.
func (AuthGrant) TableName() string { return "auth_grants" }

// KnowledgeEntry is a persisted question/answer pair used to ground future
// answers. The question (exact text, case-sensitive) is the unique key;
// the first stored answer wins and is never updated or deleted.
type KnowledgeEntry struct {
	ID        uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	Question  string    `json:"question" gorm:"type:text;not null;uniqueIndex:ux_knowledge_question"`
	Answer    string    `json:"answer"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for KnowledgeEntry.
func (KnowledgeEntry) TableName() string { return "knowledge_entries" }
