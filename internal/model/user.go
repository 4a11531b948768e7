// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is the login key and is UNIQUE in the database — it is also the
// subject we put inside access tokens, so one email maps to exactly one
// identity everywhere.
//
// WHY PasswordHash *string (nullable)?
// Accounts created through an external identity provider (social login)
// have no password at all. A nil hash means "this account cannot log in
// with a password" — which is different from an empty-string hash, which
// would just be a malformed digest. The pointer keeps that distinction.
// The hash never leaves the server; note the json:"-" tag.
type User struct {
	UserID          int64     `json:"userId"          db:"user_id"`
	Email           string    `json:"email"           db:"email"`
	PasswordHash    *string   `json:"-"               db:"password_hash"`
	Nickname        string    `json:"nickname"        db:"nickname"`
	ProfileImageURL string    `json:"profileImageUrl" db:"profile_image_url"`
	IsActive        bool      `json:"isActive"        db:"is_active"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}

// UserProfile holds the musician-specific profile attached to a user.
// Instruments and Hashtags are stored JSON-encoded in a single column.
type UserProfile struct {
	ProfileID   int64     `json:"profileId"   db:"profile_id"`
	UserID      int64     `json:"userId"      db:"user_id"`
	Instruments []string  `json:"instruments" db:"instruments"`
	UserType    string    `json:"userType"    db:"user_type"` // 'hobbyist', 'student', 'professional'
	Bio         string    `json:"bio"         db:"bio"`
	Hashtags    []string  `json:"hashtags"    db:"hashtags"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// SocialAccount links a user to an external identity provider account.
// The schema exists so provider-only accounts (nil PasswordHash) have a
// home, but no login flow is implemented for them.
type SocialAccount struct {
	SocialAccountID int64     `json:"socialAccountId" db:"social_account_id"`
	UserID          int64     `json:"userId"          db:"user_id"`
	Provider        string    `json:"provider"        db:"provider"` // 'google', 'kakao', 'naver'
	ProviderUserID  string    `json:"providerUserId"  db:"provider_user_id"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
}
