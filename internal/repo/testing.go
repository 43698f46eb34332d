package repo

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitTestDB points Db at a throwaway SQLite database for package tests.
func InitTestDB(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db failed: %v", err)
	}
	autoMigrateAll(db)
	Db = db
}
