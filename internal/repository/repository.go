// Package repository defines the storage interfaces consumed by the
// service layer. Services program against these interfaces; the concrete
// implementation lives in repository/sqlite.
package repository

import (
	"context"

	"github.com/performproject/backend/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// SessionFilter narrows ListSessions to a date range. Empty strings mean
// unbounded. Dates are "YYYY-MM-DD", matching PracticeSession.PracticeDate.
type SessionFilter struct {
	From string
	To   string
	ListOptions
}

// UserRepository is the credential store. FindByEmail returns
// apperror.ErrNotFound when no account exists; Insert returns
// apperror.ErrDuplicateEmail when the UNIQUE(email) constraint fires —
// the constraint, not the pre-insert lookup, is the real enforcement
// point for email uniqueness under concurrent registration.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	Insert(ctx context.Context, user *model.User) error

	GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *model.UserProfile) error
}

type PracticeRepository interface {
	CreateSession(ctx context.Context, session *model.PracticeSession) error
	GetSession(ctx context.Context, sessionID int64) (*model.PracticeSession, error)
	ListSessions(ctx context.Context, userID int64, filter SessionFilter) ([]model.PracticeSession, error)
	DeleteSession(ctx context.Context, sessionID int64) error
	Summary(ctx context.Context, userID int64, from, to string) (*model.PracticeSummary, error)

	AddRecording(ctx context.Context, rec *model.RecordingFile) error
	ListRecordings(ctx context.Context, sessionID int64) ([]model.RecordingFile, error)
	DeleteRecording(ctx context.Context, recordingID int64) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, groupID int64) (*model.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*model.Group, error)
	ListPublic(ctx context.Context, opts ListOptions) ([]model.Group, error)

	AddMember(ctx context.Context, member *model.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	ListMembers(ctx context.Context, groupID int64) ([]model.GroupMember, error)
	CountMembers(ctx context.Context, groupID int64) (int, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	IncrementViews(ctx context.Context, postID int64) error
	List(ctx context.Context, category string, opts ListOptions) ([]model.Post, error)
	Delete(ctx context.Context, postID int64) error

	AddComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentID int64) (*model.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error

	Like(ctx context.Context, postID, userID int64) error
	Unlike(ctx context.Context, postID, userID int64) error
}

type AchievementRepository interface {
	ListAll(ctx context.Context) ([]model.Achievement, error)
	ListForUser(ctx context.Context, userID int64) ([]model.UserAchievement, error)
	// Award is idempotent: it returns false (and no error) when the user
	// already earned the achievement.
	Award(ctx context.Context, userID, achievementID int64) (bool, error)
}
