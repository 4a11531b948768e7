package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
	"github.com/performproject/backend/internal/service"
)

// PracticeHandler serves practice session logging and recordings.
//
// Every route here is behind RequireAuth, and every operation is scoped
// to the caller — the service enforces ownership, the handler only pulls
// the identity out of the context.
type PracticeHandler struct {
	practiceService *service.PracticeService
	logger          *slog.Logger
}

func NewPracticeHandler(practiceService *service.PracticeService, logger *slog.Logger) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService, logger: logger}
}

type sessionRequest struct {
	PracticeDate   string     `json:"practiceDate"`
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	ActualPlayTime int        `json:"actualPlayTime"`
	Instrument     string     `json:"instrument"`
	Notes          string     `json:"notes"`
}

// HandleLogSession records a practice session.
//
// HTTP: POST /api/practice/sessions
// The response includes any achievements the session unlocked, so the
// client can toast them immediately.
func (h *PracticeHandler) HandleLogSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.practiceService.LogSession(r.Context(), user.UserID, &model.PracticeSession{
		PracticeDate:   req.PracticeDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ActualPlayTime: req.ActualPlayTime,
		Instrument:     req.Instrument,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	unlocked := result.Unlocked
	if unlocked == nil {
		unlocked = []model.Achievement{}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session":              result.Session,
		"unlockedAchievements": unlocked,
	})
}

// HandleListSessions lists the caller's sessions.
//
// HTTP: GET /api/practice/sessions?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=&offset=
func (h *PracticeHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	filter := repository.SessionFilter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
		ListOptions: repository.ListOptions{
			Limit:  queryInt(r, "limit", 0),
			Offset: queryInt(r, "offset", 0),
		},
	}

	sessions, err := h.practiceService.ListSessions(r.Context(), user.UserID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// HandleGetSession returns one of the caller's sessions.
//
// HTTP: GET /api/practice/sessions/{sessionID}
func (h *PracticeHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.practiceService.GetSession(r.Context(), user.UserID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleDeleteSession deletes one of the caller's sessions.
//
// HTTP: DELETE /api/practice/sessions/{sessionID}
func (h *PracticeHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.practiceService.DeleteSession(r.Context(), user.UserID, sessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSummary aggregates the caller's practice over a date range.
//
// HTTP: GET /api/practice/summary?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *PracticeHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	summary, err := h.practiceService.Summary(r.Context(), user.UserID,
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type recordingRequest struct {
	FileSize int64 `json:"fileSize"`
}

// HandleAttachRecording reserves a recording slot on a session and
// returns a presigned upload URL.
//
// HTTP: POST /api/practice/sessions/{sessionID}/recordings
func (h *PracticeHandler) HandleAttachRecording(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req recordingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	upload, err := h.practiceService.AttachRecording(r.Context(), user.UserID, sessionID, req.FileSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"recording": upload.Recording,
		"uploadUrl": upload.UploadURL,
	})
}

// HandleListRecordings lists a session's recordings with download URLs.
//
// HTTP: GET /api/practice/sessions/{sessionID}/recordings
func (h *PracticeHandler) HandleListRecordings(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}

	recordings, err := h.practiceService.ListRecordings(r.Context(), user.UserID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordings)
}

// HandleDeleteRecording soft-deletes a recording.
//
// HTTP: DELETE /api/practice/sessions/{sessionID}/recordings/{recordingID}
func (h *PracticeHandler) HandleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, err)
		return
	}
	recordingID, err := pathID(r, "recordingID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.practiceService.DeleteRecording(r.Context(), user.UserID, sessionID, recordingID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
