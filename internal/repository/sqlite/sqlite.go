// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation
// of the SQLite sources — no C toolchain, works everywhere Go works.
//
// The schema mirrors the production data model: users and profiles,
// practice sessions with recording metadata, groups and memberships,
// board posts/comments/likes, and the achievement catalog. Uniqueness
// rules that the services rely on (unique email, one membership per
// user per group, one like per user per post) are enforced here with
// UNIQUE constraints, not just by pre-checks in the service layer.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces. One struct for all of them keeps wiring simple — the
// services each receive it as their own narrow interface.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/perform.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — without
	// it SQLite locks the whole file per write, which stalls a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite for backwards compatibility.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver surfaces extended result codes; we match both the
// UNIQUE and PRIMARY KEY variants.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps this safe
// to run on every start; the achievement catalog is seeded afterwards.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id           INTEGER PRIMARY KEY AUTOINCREMENT,
			email             TEXT NOT NULL UNIQUE,
			password_hash     TEXT,
			nickname          TEXT NOT NULL,
			profile_image_url TEXT NOT NULL DEFAULT '',
			is_active         INTEGER NOT NULL DEFAULT 1,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_nickname ON users(nickname);

		CREATE TABLE IF NOT EXISTS user_profiles (
			profile_id  INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE,
			instruments TEXT NOT NULL DEFAULT '[]',
			user_type   TEXT NOT NULL DEFAULT '',
			bio         TEXT NOT NULL DEFAULT '',
			hashtags    TEXT NOT NULL DEFAULT '[]',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS social_accounts (
			social_account_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id           INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			provider          TEXT NOT NULL,
			provider_user_id  TEXT NOT NULL,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(provider, provider_user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating user tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS practice_sessions (
			session_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id          INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			practice_date    TEXT NOT NULL,
			start_time       DATETIME,
			end_time         DATETIME,
			actual_play_time INTEGER NOT NULL DEFAULT 0,
			instrument       TEXT NOT NULL DEFAULT '',
			notes            TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_practice_sessions_user_date
			ON practice_sessions(user_id, practice_date);

		CREATE TABLE IF NOT EXISTS recording_files (
			recording_id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id   INTEGER NOT NULL REFERENCES practice_sessions(session_id) ON DELETE CASCADE,
			storage_key  TEXT NOT NULL,
			file_size    INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at   DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_recording_files_session
			ON recording_files(session_id);
	`)
	if err != nil {
		return fmt.Errorf("creating practice tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS groups (
			group_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			group_name  TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id    INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			is_public   INTEGER NOT NULL DEFAULT 0,
			max_members INTEGER NOT NULL DEFAULT 50,
			invite_code TEXT NOT NULL UNIQUE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS group_members (
			member_id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id  INTEGER NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
			user_id   INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			role      TEXT NOT NULL DEFAULT 'member',
			joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(group_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating group tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			post_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT 'general',
			view_count INTEGER NOT NULL DEFAULT 0,
			like_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_category_created
			ON posts(category, created_at);

		CREATE TABLE IF NOT EXISTS comments (
			comment_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id           INTEGER NOT NULL REFERENCES posts(post_id) ON DELETE CASCADE,
			user_id           INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			parent_comment_id INTEGER REFERENCES comments(comment_id) ON DELETE CASCADE,
			content           TEXT NOT NULL,
			like_count        INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);

		CREATE TABLE IF NOT EXISTS post_likes (
			like_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER NOT NULL REFERENCES posts(post_id) ON DELETE CASCADE,
			user_id    INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(post_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating post tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS achievements (
			achievement_id  INTEGER PRIMARY KEY AUTOINCREMENT,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			condition_type  TEXT NOT NULL,
			condition_value INTEGER NOT NULL,
			icon_url        TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(condition_type, condition_value)
		);

		CREATE TABLE IF NOT EXISTS user_achievements (
			user_achievement_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id             INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			achievement_id      INTEGER NOT NULL REFERENCES achievements(achievement_id) ON DELETE CASCADE,
			earned_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, achievement_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating achievement tables: %w", err)
	}

	return db.seedAchievements()
}

// seedAchievements inserts the default achievement catalog. The UNIQUE
// constraint on (condition_type, condition_value) plus OR IGNORE makes
// this idempotent across restarts.
func (db *DB) seedAchievements() error {
	seed := []struct {
		title         string
		description   string
		conditionType string
		value         int
	}{
		{"First Note", "Log your first practice session", "session_count", 1},
		{"Getting Serious", "Log 10 practice sessions", "session_count", 10},
		{"Centurion", "Log 100 practice sessions", "session_count", 100},
		{"One Hour In", "Practice for a total of 1 hour", "practice_time", 3600},
		{"Ten Hour Club", "Practice for a total of 10 hours", "practice_time", 36000},
		{"Hundred Hour Club", "Practice for a total of 100 hours", "practice_time", 360000},
	}

	for _, a := range seed {
		_, err := db.conn.Exec(`
			INSERT OR IGNORE INTO achievements (title, description, condition_type, condition_value)
			VALUES (?, ?, ?, ?)`,
			a.title, a.description, a.conditionType, a.value,
		)
		if err != nil {
			return fmt.Errorf("seeding achievement %q: %w", a.title, err)
		}
	}
	return nil
}
