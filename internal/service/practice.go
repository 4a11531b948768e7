package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
	"github.com/performproject/backend/internal/storage"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	// Twelve hours of playing in one session is almost certainly a
	// client bug, not a marathon.
	maxSessionSeconds = 12 * 60 * 60
)

// PracticeService handles practice session logging, recordings, and the
// achievement award pass that follows each logged session.
//
// recordings may be nil when object storage isn't configured — the server
// runs fine without it, recording endpoints just report unavailability.
type PracticeService struct {
	practice     repository.PracticeRepository
	achievements repository.AchievementRepository
	recordings   *storage.RecordingStorage
	logger       *slog.Logger
}

func NewPracticeService(
	practice repository.PracticeRepository,
	achievements repository.AchievementRepository,
	recordings *storage.RecordingStorage,
	logger *slog.Logger,
) *PracticeService {
	return &PracticeService{
		practice:     practice,
		achievements: achievements,
		recordings:   recordings,
		logger:       logger,
	}
}

// LogResult is returned by LogSession: the stored session plus any
// achievements the session newly unlocked.
type LogResult struct {
	Session  *model.PracticeSession
	Unlocked []model.Achievement
}

// LogSession validates and stores a practice session, then runs the
// achievement pass over the user's updated totals.
//
// ActualPlayTime may be omitted when StartTime and EndTime are both set —
// it is then derived from the interval.
func (s *PracticeService) LogSession(ctx context.Context, userID int64, session *model.PracticeSession) (*LogResult, error) {
	if session == nil {
		return nil, apperror.ValidationFailed("session", "session body is required")
	}
	session.UserID = userID
	session.Instrument = strings.TrimSpace(session.Instrument)

	if _, err := time.Parse("2006-01-02", session.PracticeDate); err != nil {
		return nil, apperror.ValidationFailed("practiceDate", "practiceDate must be YYYY-MM-DD")
	}

	if session.StartTime != nil && session.EndTime != nil {
		if !session.EndTime.After(*session.StartTime) {
			return nil, apperror.ValidationFailed("endTime", "endTime must be after startTime")
		}
		if session.ActualPlayTime == 0 {
			session.ActualPlayTime = int(session.EndTime.Sub(*session.StartTime).Seconds())
		}
	}

	if session.ActualPlayTime <= 0 {
		return nil, apperror.ValidationFailed("actualPlayTime", "practice time must be positive")
	}
	if session.ActualPlayTime > maxSessionSeconds {
		return nil, apperror.ValidationFailed("actualPlayTime", "practice time exceeds 12 hours")
	}

	if err := s.practice.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("service/practice: creating session: %w", err)
	}

	s.logger.Info("practice session logged",
		slog.Int64("userID", userID),
		slog.Int64("sessionID", session.SessionID),
		slog.Int("seconds", session.ActualPlayTime),
	)

	unlocked, err := s.awardNew(ctx, userID)
	if err != nil {
		// The session is stored; a failed award pass shouldn't fail the
		// request. The next logged session retries the same conditions.
		s.logger.Error("achievement pass failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		unlocked = nil
	}

	return &LogResult{Session: session, Unlocked: unlocked}, nil
}

// awardNew compares the user's all-time totals against the achievement
// catalog and grants whatever they now qualify for. The store's
// UNIQUE(user_id, achievement_id) makes re-running this after every
// session idempotent.
func (s *PracticeService) awardNew(ctx context.Context, userID int64) ([]model.Achievement, error) {
	summary, err := s.practice.Summary(ctx, userID, "", "")
	if err != nil {
		return nil, fmt.Errorf("summarising practice: %w", err)
	}

	catalog, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading achievement catalog: %w", err)
	}

	var unlocked []model.Achievement
	for _, a := range catalog {
		var met bool
		switch a.ConditionType {
		case model.AchievementConditionPracticeTime:
			met = summary.TotalSeconds >= a.ConditionValue
		case model.AchievementConditionSessionCount:
			met = summary.SessionCount >= a.ConditionValue
		}
		if !met {
			continue
		}

		granted, err := s.achievements.Award(ctx, userID, a.AchievementID)
		if err != nil {
			return unlocked, fmt.Errorf("awarding %q: %w", a.Title, err)
		}
		if granted {
			s.logger.Info("achievement unlocked",
				slog.Int64("userID", userID),
				slog.String("title", a.Title),
			)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked, nil
}

// ListSessions returns the caller's sessions for an optional date range.
func (s *PracticeService) ListSessions(ctx context.Context, userID int64, filter repository.SessionFilter) ([]model.PracticeSession, error) {
	if err := validateDateFilter(filter.From, filter.To); err != nil {
		return nil, err
	}

	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	sessions, err := s.practice.ListSessions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("service/practice: listing sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns one session, enforcing ownership.
func (s *PracticeService) GetSession(ctx context.Context, userID, sessionID int64) (*model.PracticeSession, error) {
	session, err := s.practice.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service/practice: fetching session %d: %w", sessionID, err)
	}
	if session.UserID != userID {
		// Don't reveal that the session exists.
		return nil, apperror.NotFound("practice session", fmt.Sprint(sessionID))
	}
	return session, nil
}

// DeleteSession removes one of the caller's sessions.
func (s *PracticeService) DeleteSession(ctx context.Context, userID, sessionID int64) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.practice.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("service/practice: deleting session %d: %w", sessionID, err)
	}
	return nil
}

// Summary aggregates the caller's practice over a date range.
func (s *PracticeService) Summary(ctx context.Context, userID int64, from, to string) (*model.PracticeSummary, error) {
	if err := validateDateFilter(from, to); err != nil {
		return nil, err
	}
	summary, err := s.practice.Summary(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("service/practice: summarising: %w", err)
	}
	return summary, nil
}

// RecordingUpload is returned by AttachRecording: the metadata row plus
// the presigned URL the client PUTs the bytes to.
type RecordingUpload struct {
	Recording *model.RecordingFile
	UploadURL string
}

// RecordingDownload pairs a recording with a presigned GET URL.
type RecordingDownload struct {
	model.RecordingFile
	DownloadURL string `json:"downloadUrl"`
}

var errStorageUnavailable = apperror.Unavailable("recording storage is not configured")

// AttachRecording reserves a storage key for a new recording on one of
// the caller's sessions and returns a presigned upload URL. The metadata
// row is written immediately; the client uploads directly to object
// storage afterwards.
func (s *PracticeService) AttachRecording(ctx context.Context, userID, sessionID, fileSize int64) (*RecordingUpload, error) {
	if s.recordings == nil {
		return nil, errStorageUnavailable
	}
	if fileSize < 0 {
		return nil, apperror.ValidationFailed("fileSize", "fileSize must not be negative")
	}

	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rec := &model.RecordingFile{
		SessionID:  sessionID,
		StorageKey: s.recordings.NewObjectKey(userID, sessionID),
		FileSize:   fileSize,
	}

	uploadURL, err := s.recordings.PresignUpload(ctx, rec.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("service/practice: presigning upload: %w", err)
	}

	if err := s.practice.AddRecording(ctx, rec); err != nil {
		return nil, fmt.Errorf("service/practice: storing recording metadata: %w", err)
	}

	return &RecordingUpload{Recording: rec, UploadURL: uploadURL}, nil
}

// ListRecordings returns a session's recordings with presigned download
// URLs.
func (s *PracticeService) ListRecordings(ctx context.Context, userID, sessionID int64) ([]RecordingDownload, error) {
	if s.recordings == nil {
		return nil, errStorageUnavailable
	}

	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	recs, err := s.practice.ListRecordings(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service/practice: listing recordings: %w", err)
	}

	out := make([]RecordingDownload, 0, len(recs))
	for _, rec := range recs {
		url, err := s.recordings.PresignDownload(ctx, rec.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("service/practice: presigning download for %s: %w", rec.StorageKey, err)
		}
		out = append(out, RecordingDownload{RecordingFile: rec, DownloadURL: url})
	}
	return out, nil
}

// DeleteRecording soft-deletes a recording on one of the caller's sessions.
func (s *PracticeService) DeleteRecording(ctx context.Context, userID, sessionID, recordingID int64) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.practice.DeleteRecording(ctx, recordingID); err != nil {
		return fmt.Errorf("service/practice: deleting recording %d: %w", recordingID, err)
	}
	return nil
}

func validateDateFilter(from, to string) error {
	if from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			return apperror.ValidationFailed("from", "from must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			return apperror.ValidationFailed("to", "to must be YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && to < from {
		return apperror.ValidationFailed("to", "to must not be before from")
	}
	return nil
}
