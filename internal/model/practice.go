package model

import "time"

// PracticeSession is one logged practice entry for a user.
//
// PracticeDate is the calendar day the session belongs to ("2026-03-14"),
// separate from StartTime/EndTime which are optional exact timestamps —
// users can log a session after the fact with just a date and a duration.
type PracticeSession struct {
	SessionID      int64      `json:"sessionId"      db:"session_id"`
	UserID         int64      `json:"userId"         db:"user_id"`
	PracticeDate   string     `json:"practiceDate"   db:"practice_date"` // "YYYY-MM-DD"
	StartTime      *time.Time `json:"startTime"      db:"start_time"`
	EndTime        *time.Time `json:"endTime"        db:"end_time"`
	ActualPlayTime int        `json:"actualPlayTime" db:"actual_play_time"` // seconds
	Instrument     string     `json:"instrument"     db:"instrument"`
	Notes          string     `json:"notes"          db:"notes"`
	CreatedAt      time.Time  `json:"createdAt"      db:"created_at"`
}

// RecordingFile is the metadata row for an audio recording attached to a
// practice session. The bytes themselves live in object storage under
// StorageKey; this row is soft-deleted (DeletedAt) so the object can be
// garbage-collected later.
type RecordingFile struct {
	RecordingID int64      `json:"recordingId" db:"recording_id"`
	SessionID   int64      `json:"sessionId"   db:"session_id"`
	StorageKey  string     `json:"storageKey"  db:"storage_key"`
	FileSize    int64      `json:"fileSize"    db:"file_size"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	DeletedAt   *time.Time `json:"-"           db:"deleted_at"`
}

// PracticeSummary aggregates a user's practice over a date range.
// Feeds the calendar/statistics views.
type PracticeSummary struct {
	TotalSeconds int `json:"totalSeconds"`
	SessionCount int `json:"sessionCount"`
}
