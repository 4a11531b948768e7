package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
)

// =========================================================================
// INSERT TESTS
// =========================================================================

func TestUserInsert(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "musician@example.com", "drumgirl")

	// Verify the user was modified in-place (pointer receiver)
	if user.UserID == 0 {
		t.Error("Insert() did not set user.UserID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Insert() did not set user.CreatedAt")
	}
	if user.UpdatedAt.IsZero() {
		t.Error("Insert() did not set user.UpdatedAt")
	}
}

func TestUserInsert_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "taken@example.com", "first")

	hash := "$2a$04$anotherfakehashforthesecondinsertattempt"
	err := db.Users().Insert(context.Background(), &model.User{
		Email:        "taken@example.com",
		PasswordHash: &hash,
		Nickname:     "second",
		IsActive:     true,
	})
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("Insert() with duplicate email: error = %v, want ErrDuplicateEmail", err)
	}
}

func TestUserInsert_NilPasswordHash(t *testing.T) {
	db := newTestDB(t)

	// Provider-only account: no password hash at all
	user := &model.User{
		Email:    "social@example.com",
		Nickname: "socialite",
		IsActive: true,
	}
	if err := db.Users().Insert(context.Background(), user); err != nil {
		t.Fatalf("Insert() with nil hash: error = %v", err)
	}

	got, err := db.Users().FindByEmail(context.Background(), "social@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if got.PasswordHash != nil {
		t.Errorf("PasswordHash = %q, want nil", *got.PasswordHash)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestUserFindByEmail(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "find@example.com", "finder")

	got, err := db.Users().FindByEmail(context.Background(), "find@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if got.UserID != created.UserID {
		t.Errorf("UserID = %d, want %d", got.UserID, created.UserID)
	}
	if got.Nickname != "finder" {
		t.Errorf("Nickname = %q, want %q", got.Nickname, "finder")
	}
	if got.PasswordHash == nil {
		t.Error("PasswordHash = nil, want the stored hash")
	}
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().FindByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("FindByEmail() for unknown email: error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "byid@example.com", "byid")

	got, err := db.Users().GetByID(context.Background(), created.UserID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "byid@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "byid@example.com")
	}
	if got.UserID != created.UserID {
		t.Errorf("UserID = %d, want %d", got.UserID, created.UserID)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 99999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() for unknown id: error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// PROFILE TESTS
// =========================================================================

func TestUserProfile_UpsertRoundTrip(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "profile@example.com", "profiled")

	profile := &model.UserProfile{
		UserID:      user.UserID,
		Instruments: []string{"guitar", "piano"},
		UserType:    "hobbyist",
		Bio:         "weekend shredder",
		Hashtags:    []string{"blues", "jazz"},
	}
	if err := db.Users().UpsertProfile(context.Background(), profile); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	got, err := db.Users().GetProfile(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if len(got.Instruments) != 2 || got.Instruments[0] != "guitar" {
		t.Errorf("Instruments = %v, want [guitar piano]", got.Instruments)
	}
	if got.Bio != "weekend shredder" {
		t.Errorf("Bio = %q, want %q", got.Bio, "weekend shredder")
	}

	// Upsert again: must update in place, not create a second row
	profile.Bio = "touring now"
	profile.Instruments = []string{"bass"}
	if err := db.Users().UpsertProfile(context.Background(), profile); err != nil {
		t.Fatalf("second UpsertProfile() error = %v", err)
	}

	got, err = db.Users().GetProfile(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetProfile() after update error = %v", err)
	}
	if got.Bio != "touring now" {
		t.Errorf("Bio after update = %q, want %q", got.Bio, "touring now")
	}
	if len(got.Instruments) != 1 || got.Instruments[0] != "bass" {
		t.Errorf("Instruments after update = %v, want [bass]", got.Instruments)
	}
}

func TestUserGetProfile_NotFound(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "bare@example.com", "bare")

	_, err := db.Users().GetProfile(context.Background(), user.UserID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetProfile() with no saved profile: error = %v, want ErrNotFound", err)
	}
}
