package handler

import (
	"log/slog"
	"net/http"

	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/service"
)

// AuthHandler exposes the three authentication operations over HTTP:
//
//	POST /api/auth/register → create account, return first token
//	POST /api/auth/login    → verify credentials, return token
//	GET  /api/auth/me       → return the caller's account (RequireAuth)
//
// The handler parses requests and shapes responses; every rule — email
// uniqueness, the indistinguishable invalid-credentials cases, the
// post-verification inactive check — lives in service.AuthService.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the wire shape existing clients expect:
//
//	{"access_token": "<jwt>", "token_type": "bearer"}
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// Registration is also the first login — the response carries a token,
// so clients don't need a second round-trip.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// HandleLogin verifies credentials and returns a fresh token.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// HandleMe returns the authenticated caller's account.
//
// HTTP: GET /api/auth/me
// Auth: Required — RequireAuth has already resolved the token to a full
// user record and put it in the context.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth-protected route, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "could not validate credentials",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
