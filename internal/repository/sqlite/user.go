package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users + profiles slice of the store.
type UserDB struct {
	conn *sql.DB
}

// Users returns the user repository view of the store.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

const userColumns = `user_id, email, password_hash, nickname, profile_image_url, is_active, created_at, updated_at`

// scanUser reads one users row. password_hash is nullable (provider-only
// accounts), so it goes through sql.NullString.
func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var hash sql.NullString

	err := row.Scan(
		&u.UserID,
		&u.Email,
		&hash,
		&u.Nickname,
		&u.ProfileImageURL,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	return &u, nil
}

// FindByEmail looks up the credential record for an email.
// Returns apperror.ErrNotFound when no account exists — the caller decides
// whether that means "invalid credentials" (login) or "email free" (register).
func (u *UserDB) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: finding user by email: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by their numeric ID.
func (u *UserDB) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(userID))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", userID, err)
	}
	return user, nil
}

// Insert creates a new user row and fills in UserID and timestamps.
//
// The UNIQUE(email) constraint is the authoritative uniqueness check:
// two concurrent registrations for the same email can both pass the
// service's pre-insert lookup, but only one insert survives — the loser
// gets apperror.ErrDuplicateEmail from here.
func (u *UserDB) Insert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, nickname, profile_image_url, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.ProfileImageURL,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateEmail()
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	user.UserID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	return nil
}

// GetProfile returns the musician profile for a user, or ErrNotFound if
// they never saved one.
func (u *UserDB) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	var p model.UserProfile
	var instruments, hashtags string

	err := u.conn.QueryRowContext(ctx,
		`SELECT profile_id, user_id, instruments, user_type, bio, hashtags, created_at, updated_at
		 FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(
		&p.ProfileID,
		&p.UserID,
		&instruments,
		&p.UserType,
		&p.Bio,
		&hashtags,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", fmt.Sprint(userID))
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %d: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(instruments), &p.Instruments); err != nil {
		return nil, fmt.Errorf("sqlite: decoding instruments for user %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(hashtags), &p.Hashtags); err != nil {
		return nil, fmt.Errorf("sqlite: decoding hashtags for user %d: %w", userID, err)
	}

	return &p, nil
}

// UpsertProfile creates or replaces a user's profile. The string slices
// are JSON-encoded into TEXT columns — SQLite has no array type.
func (u *UserDB) UpsertProfile(ctx context.Context, profile *model.UserProfile) error {
	if profile.Instruments == nil {
		profile.Instruments = []string{}
	}
	if profile.Hashtags == nil {
		profile.Hashtags = []string{}
	}

	instruments, err := json.Marshal(profile.Instruments)
	if err != nil {
		return fmt.Errorf("sqlite: encoding instruments: %w", err)
	}
	hashtags, err := json.Marshal(profile.Hashtags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding hashtags: %w", err)
	}

	now := time.Now().UTC()
	profile.UpdatedAt = now

	_, err = u.conn.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, instruments, user_type, bio, hashtags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			instruments = excluded.instruments,
			user_type   = excluded.user_type,
			bio         = excluded.bio,
			hashtags    = excluded.hashtags,
			updated_at  = excluded.updated_at`,
		profile.UserID,
		string(instruments),
		profile.UserType,
		profile.Bio,
		string(hashtags),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting profile for user %d: %w", profile.UserID, err)
	}
	return nil
}
