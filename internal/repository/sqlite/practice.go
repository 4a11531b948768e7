package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

var _ repository.PracticeRepository = (*PracticeDB)(nil)

// PracticeDB is the practice sessions + recordings slice of the store.
type PracticeDB struct {
	conn *sql.DB
}

// Practice returns the practice repository view of the store.
func (db *DB) Practice() *PracticeDB {
	return &PracticeDB{conn: db.conn}
}

// CreateSession inserts a practice session and fills in SessionID.
func (p *PracticeDB) CreateSession(ctx context.Context, session *model.PracticeSession) error {
	session.CreatedAt = time.Now().UTC()

	res, err := p.conn.ExecContext(ctx,
		`INSERT INTO practice_sessions (user_id, practice_date, start_time, end_time, actual_play_time, instrument, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.UserID,
		session.PracticeDate,
		session.StartTime,
		session.EndTime,
		session.ActualPlayTime,
		session.Instrument,
		session.Notes,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting practice session: %w", err)
	}

	session.SessionID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new session id: %w", err)
	}
	return nil
}

func (p *PracticeDB) GetSession(ctx context.Context, sessionID int64) (*model.PracticeSession, error) {
	var s model.PracticeSession
	var start, end sql.NullTime

	err := p.conn.QueryRowContext(ctx,
		`SELECT session_id, user_id, practice_date, start_time, end_time, actual_play_time, instrument, notes, created_at
		 FROM practice_sessions WHERE session_id = ?`, sessionID,
	).Scan(
		&s.SessionID,
		&s.UserID,
		&s.PracticeDate,
		&start,
		&end,
		&s.ActualPlayTime,
		&s.Instrument,
		&s.Notes,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("practice session", fmt.Sprint(sessionID))
		}
		return nil, fmt.Errorf("sqlite: getting practice session %d: %w", sessionID, err)
	}

	if start.Valid {
		s.StartTime = &start.Time
	}
	if end.Valid {
		s.EndTime = &end.Time
	}
	return &s, nil
}

// ListSessions returns a user's sessions, newest practice date first,
// optionally bounded to a date range.
func (p *PracticeDB) ListSessions(ctx context.Context, userID int64, filter repository.SessionFilter) ([]model.PracticeSession, error) {
	query := `SELECT session_id, user_id, practice_date, start_time, end_time, actual_play_time, instrument, notes, created_at
		FROM practice_sessions WHERE user_id = ?`
	args := []any{userID}

	if filter.From != "" {
		query += ` AND practice_date >= ?`
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += ` AND practice_date <= ?`
		args = append(args, filter.To)
	}

	query += ` ORDER BY practice_date DESC, session_id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing practice sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.PracticeSession{}
	for rows.Next() {
		var s model.PracticeSession
		var start, end sql.NullTime
		if err := rows.Scan(
			&s.SessionID,
			&s.UserID,
			&s.PracticeDate,
			&start,
			&end,
			&s.ActualPlayTime,
			&s.Instrument,
			&s.Notes,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning practice session: %w", err)
		}
		if start.Valid {
			s.StartTime = &start.Time
		}
		if end.Valid {
			s.EndTime = &end.Time
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating practice sessions: %w", err)
	}
	return sessions, nil
}

func (p *PracticeDB) DeleteSession(ctx context.Context, sessionID int64) error {
	res, err := p.conn.ExecContext(ctx,
		`DELETE FROM practice_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting practice session %d: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of session %d: %w", sessionID, err)
	}
	if affected == 0 {
		return apperror.NotFound("practice session", fmt.Sprint(sessionID))
	}
	return nil
}

// Summary aggregates total seconds and session count for a date range.
// COALESCE keeps the zero case (no sessions) a valid row instead of NULL.
func (p *PracticeDB) Summary(ctx context.Context, userID int64, from, to string) (*model.PracticeSummary, error) {
	query := `SELECT COALESCE(SUM(actual_play_time), 0), COUNT(*)
		FROM practice_sessions WHERE user_id = ?`
	args := []any{userID}

	if from != "" {
		query += ` AND practice_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND practice_date <= ?`
		args = append(args, to)
	}

	var sum model.PracticeSummary
	err := p.conn.QueryRowContext(ctx, query, args...).Scan(&sum.TotalSeconds, &sum.SessionCount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: summarising practice for user %d: %w", userID, err)
	}
	return &sum, nil
}

// AddRecording inserts the metadata row for an uploaded recording.
func (p *PracticeDB) AddRecording(ctx context.Context, rec *model.RecordingFile) error {
	rec.CreatedAt = time.Now().UTC()

	res, err := p.conn.ExecContext(ctx,
		`INSERT INTO recording_files (session_id, storage_key, file_size, created_at)
		 VALUES (?, ?, ?, ?)`,
		rec.SessionID,
		rec.StorageKey,
		rec.FileSize,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting recording for session %d: %w", rec.SessionID, err)
	}

	rec.RecordingID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new recording id: %w", err)
	}
	return nil
}

// ListRecordings returns the live (not soft-deleted) recordings of a session.
func (p *PracticeDB) ListRecordings(ctx context.Context, sessionID int64) ([]model.RecordingFile, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT recording_id, session_id, storage_key, file_size, created_at
		 FROM recording_files
		 WHERE session_id = ? AND deleted_at IS NULL
		 ORDER BY recording_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recordings for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	recs := []model.RecordingFile{}
	for rows.Next() {
		var r model.RecordingFile
		if err := rows.Scan(&r.RecordingID, &r.SessionID, &r.StorageKey, &r.FileSize, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recording: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recordings: %w", err)
	}
	return recs, nil
}

// DeleteRecording soft-deletes a recording. The object in storage stays
// until a cleanup job removes it.
func (p *PracticeDB) DeleteRecording(ctx context.Context, recordingID int64) error {
	res, err := p.conn.ExecContext(ctx,
		`UPDATE recording_files SET deleted_at = ? WHERE recording_id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), recordingID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recording %d: %w", recordingID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of recording %d: %w", recordingID, err)
	}
	if affected == 0 {
		return apperror.NotFound("recording", fmt.Sprint(recordingID))
	}
	return nil
}
