package handler

import (
	"log/slog"
	"net/http"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
	"github.com/performproject/backend/internal/service"
)

// GroupHandler serves the practice group endpoints.
type GroupHandler struct {
	groupService *service.GroupService
	logger       *slog.Logger
}

func NewGroupHandler(groupService *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, logger: logger}
}

type groupRequest struct {
	GroupName   string `json:"groupName"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
	MaxMembers  int    `json:"maxMembers"`
}

// HandleCreate creates a group with the caller as owner.
//
// HTTP: POST /api/groups
func (h *GroupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groupService.Create(r.Context(), user.UserID, &model.Group{
		GroupName:   req.GroupName,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// HandleList lists public groups.
//
// HTTP: GET /api/groups?limit=&offset=
func (h *GroupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.ListPublic(r.Context(), repository.ListOptions{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// HandleGet returns one group.
//
// HTTP: GET /api/groups/{groupID}
func (h *GroupHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groupService.Get(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

type joinRequest struct {
	InviteCode string `json:"inviteCode"`
}

// HandleJoin joins the caller to a group by invite code.
//
// HTTP: POST /api/groups/join
func (h *GroupHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.InviteCode == "" {
		writeError(w, apperror.ValidationFailed("inviteCode", "invite code is required"))
		return
	}

	group, err := h.groupService.Join(r.Context(), user.UserID, req.InviteCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// HandleLeave removes the caller from a group.
//
// HTTP: DELETE /api/groups/{groupID}/members/me
func (h *GroupHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.groupService.Leave(r.Context(), user.UserID, groupID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMembers lists a group's members.
//
// HTTP: GET /api/groups/{groupID}/members
func (h *GroupHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.groupService.Members(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
