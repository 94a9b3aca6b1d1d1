package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Drew466/auth-server-tbot/internal/domain"
)

func TestFindAnswer_NoEntry_ReturnsErrNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})

	ans, err := FindAnswer(context.Background(), db, "what are the fees?")
	if ans != "" {
		t.Fatalf("expected empty answer, got %q", ans)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertAnswer_ThenFind(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})
	ctx := context.Background()

	if err := InsertAnswer(ctx, db, "what are the fees?", "No fees on standard accounts."); err != nil {
		t.Fatalf("InsertAnswer: %v", err)
	}

	ans, err := FindAnswer(ctx, db, "what are the fees?")
	if err != nil {
		t.Fatalf("FindAnswer: %v", err)
	}
	if ans != "No fees on standard accounts." {
		t.Fatalf("answer = %q", ans)
	}
}

func TestInsertAnswer_DuplicateQuestion_FirstWriteWins(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})
	ctx := context.Background()

	if err := InsertAnswer(ctx, db, "q", "original"); err != nil {
		t.Fatalf("first InsertAnswer: %v", err)
	}
	if err := InsertAnswer(ctx, db, "q", "replacement"); err != nil {
		t.Fatalf("duplicate InsertAnswer should be a no-op, got %v", err)
	}

	ans, err := FindAnswer(ctx, db, "q")
	if err != nil {
		t.Fatalf("FindAnswer: %v", err)
	}
	if ans != "original" {
		t.Fatalf("answer = %q, want the original to survive", ans)
	}

	n, err := CountEntries(ctx, db)
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	if n != 1 {
		t.Fatalf("CountEntries = %d, want 1", n)
	}
}

func TestFindAnswer_ExactMatchIsCaseSensitive(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})
	ctx := context.Background()

	if err := InsertAnswer(ctx, db, "How do I close my account?", "Visit a branch."); err != nil {
		t.Fatalf("InsertAnswer: %v", err)
	}

	if _, err := FindAnswer(ctx, db, "how do i close my account?"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lowercased lookup should miss, got err=%v", err)
	}
	if ans, err := FindAnswer(ctx, db, "How do I close my account?"); err != nil || ans != "Visit a branch." {
		t.Fatalf("exact lookup = (%q, %v)", ans, err)
	}
}

func TestSearchRelated_SubstringInsertionOrderLimited(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})
	ctx := context.Background()

	seed := []string{
		"card delivery time",
		"card limits",
		"account opening",
		"card activation",
		"lost card replacement",
	}
	for _, q := range seed {
		if err := InsertAnswer(ctx, db, q, "a"); err != nil {
			t.Fatalf("InsertAnswer(%q): %v", q, err)
		}
	}

	got, err := SearchRelated(ctx, db, "card", 3)
	if err != nil {
		t.Fatalf("SearchRelated: %v", err)
	}
	want := []string{"card delivery time", "card limits", "card activation"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchRelated = %v, want %v", got, want)
	}
}

func TestSearchRelated_MayIncludeQueryItself(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})
	ctx := context.Background()

	if err := InsertAnswer(ctx, db, "card limits", "a"); err != nil {
		t.Fatalf("InsertAnswer: %v", err)
	}

	got, err := SearchRelated(ctx, db, "card limits", 3)
	if err != nil {
		t.Fatalf("SearchRelated: %v", err)
	}
	if len(got) != 1 || got[0] != "card limits" {
		t.Fatalf("SearchRelated = %v, want the stored question itself", got)
	}
}

func TestSearchRelated_EscapesLikeWildcards(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})
	ctx := context.Background()

	if err := InsertAnswer(ctx, db, "what is 100% cashback", "a"); err != nil {
		t.Fatalf("InsertAnswer: %v", err)
	}
	if err := InsertAnswer(ctx, db, "what is 1000 cashback", "a"); err != nil {
		t.Fatalf("InsertAnswer: %v", err)
	}

	// "%" must match literally, not as a wildcard.
	got, err := SearchRelated(ctx, db, "100%", 3)
	if err != nil {
		t.Fatalf("SearchRelated: %v", err)
	}
	if len(got) != 1 || got[0] != "what is 100% cashback" {
		t.Fatalf("SearchRelated = %v, want only the literal %% match", got)
	}
}

func TestSearchRelated_NoMatches_ReturnsEmpty(t *testing.T) {
	db := newRepoDB(t, &domain.KnowledgeEntry{})

	got, err := SearchRelated(context.Background(), db, "mortgage", 3)
	if err != nil {
		t.Fatalf("SearchRelated: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("SearchRelated = %v, want empty", got)
	}
}
