package handler

import (
	"log/slog"
	"net/http"

	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/service"
)

// AchievementHandler serves the achievement catalog and earned lists.
type AchievementHandler struct {
	achievementService *service.AchievementService
	logger             *slog.Logger
}

func NewAchievementHandler(achievementService *service.AchievementService, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService, logger: logger}
}

// HandleCatalog lists every achievement in the system.
//
// HTTP: GET /api/achievements
func (h *AchievementHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementService.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

// HandleEarned lists the achievements the caller has unlocked.
//
// HTTP: GET /api/achievements/me
func (h *AchievementHandler) HandleEarned(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	earned, err := h.achievementService.Earned(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, earned)
}
