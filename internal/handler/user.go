package handler

import (
	"log/slog"
	"net/http"

	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/service"
)

// UserHandler serves the musician profile endpoints.
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// HandleGetProfile returns the caller's profile.
//
// HTTP: GET /api/users/me/profile
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	profile, err := h.userService.GetProfile(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type profileRequest struct {
	Instruments []string `json:"instruments"`
	UserType    string   `json:"userType"`
	Bio         string   `json:"bio"`
	Hashtags    []string `json:"hashtags"`
}

// HandleSaveProfile creates or replaces the caller's profile.
//
// HTTP: PUT /api/users/me/profile
func (h *UserHandler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.userService.SaveProfile(r.Context(), user.UserID, &model.UserProfile{
		Instruments: req.Instruments,
		UserType:    req.UserType,
		Bio:         req.Bio,
		Hashtags:    req.Hashtags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
