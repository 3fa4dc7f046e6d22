package database

import (
	"path/filepath"
	"testing"
)

func TestInitDB_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wgconf.db")

	db, err := InitDB(path)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !db.Migrator().HasTable("backups") {
		t.Errorf("expected backups table to be migrated")
	}

	if err := CloseDB(db); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}
