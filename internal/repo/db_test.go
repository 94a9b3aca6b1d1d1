package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenSQLite_MigrateAndUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	ctx := context.Background()
	if err := UpsertGrant(ctx, db, 1, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("UpsertGrant after migrate: %v", err)
	}
	if err := InsertAnswer(ctx, db, "q", "a"); err != nil {
		t.Fatalf("InsertAnswer after migrate: %v", err)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "assistant.db")

	if _, err := OpenSQLite(path); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
