package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

// listAll is a pagination helper big enough for every test fixture.
func listAll() repository.ListOptions {
	return repository.ListOptions{Limit: 100}
}

// newTestDB opens a fresh database in a per-test temp directory.
// A file (not ":memory:") because database/sql pools connections, and
// every pooled connection to ":memory:" would get its own empty database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// t.Cleanup registers a function to run when the test finishes.
	// This is like defer, but scoped to the test — even works in subtests.
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email, nickname string) *model.User {
	t.Helper()
	hash := "$2a$04$fakehashfortestingonlyfakehashfortestingonly"
	user := &model.User{
		Email:        email,
		PasswordHash: &hash,
		Nickname:     nickname,
		IsActive:     true,
	}
	if err := db.Users().Insert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestNew_SeedsAchievementCatalog(t *testing.T) {
	db := newTestDB(t)

	catalog, err := db.Achievements().ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(catalog) == 0 {
		t.Fatal("a fresh database should have a seeded achievement catalog")
	}
}

func TestNew_SeedIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db1, err := New(path)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	first, _ := db1.Achievements().ListAll(context.Background())
	db1.Close()

	// Reopening the same file must not duplicate the seeded rows
	db2, err := New(path)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()
	second, _ := db2.Achievements().ListAll(context.Background())

	if len(first) != len(second) {
		t.Errorf("catalog grew from %d to %d rows on reopen", len(first), len(second))
	}
}
