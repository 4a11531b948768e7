// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate, enforce
// rules, and orchestrate; repositories read and write the database.
// Services receive repository interfaces, never concrete store types,
// so tests can hand them in-memory fakes.
//
// AuthService is the authentication core. It sits between the HTTP
// handlers and the credential store / crypto utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) + PasswordService (bcrypt)
//
// It holds no mutable state of its own — every operation is a single
// pass over its (concurrency-safe) dependencies, so one AuthService
// serves all requests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

// AuthService handles registration, login, and identity resolution.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record with the access token minted for it,
// so the handler can build the token response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates an account and returns a token — registration doubles
// as the first login.
//
// The pre-insert lookup gives fast, friendly feedback for the common case,
// but it is NOT the uniqueness guarantee: two concurrent registrations for
// the same email can both pass it. The store's UNIQUE(email) constraint is
// the real enforcement point, and its violation comes back from Insert as
// the same ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, email, password, nickname string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	nickname = strings.TrimSpace(nickname)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if nickname == "" {
		return nil, apperror.ValidationFailed("nickname", "nickname is required")
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.DuplicateEmail()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.Storage(fmt.Errorf("service/auth: checking email: %w", err))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: &hash,
		Nickname:     nickname,
		IsActive:     true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			// Lost the race against a concurrent registration.
			return nil, err
		}
		return nil, apperror.Storage(fmt.Errorf("service/auth: inserting user: %w", err))
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.UserID),
		slog.String("nickname", user.Nickname),
	)

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.UserID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns a fresh token.
//
// Unknown email, wrong password, and a provider-only account (nil
// password hash) all produce the same ErrInvalidCredentials — responses
// must not let a caller enumerate which emails have accounts. The
// inactive check runs only AFTER the password verifies, so a deactivated
// account's existence is revealed only to someone who already holds its
// password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, apperror.Storage(fmt.Errorf("service/auth: looking up user: %w", err))
	}

	if user.PasswordHash == nil {
		// Account exists but was created via a social provider — it has
		// no password to check.
		return nil, apperror.InvalidCredentials()
	}
	if err := s.passwords.Verify(*user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	if !user.IsActive {
		return nil, apperror.InactiveAccount()
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.UserID, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.UserID))

	return &AuthResult{User: user, Token: token}, nil
}

// ResolveIdentity validates a token and returns the full user record for
// its subject. Every failure mode — bad signature, expiry, malformed
// structure, or a subject that no longer exists — collapses into
// ErrInvalidToken: a token for a deleted account must look exactly like
// a forged one.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*model.User, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidToken()
		}
		return nil, apperror.Storage(fmt.Errorf("service/auth: resolving subject: %w", err))
	}

	return user, nil
}
