package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

// UserService covers the profile operations around an account — the
// musician-specific data that isn't part of authentication.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// GetProfile returns a user's profile. A user who never saved one gets an
// empty profile back rather than a 404 — the frontend always renders the
// profile form.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.UserProfile{
				UserID:      userID,
				Instruments: []string{},
				Hashtags:    []string{},
			}, nil
		}
		return nil, fmt.Errorf("service/user: fetching profile: %w", err)
	}
	return profile, nil
}

// SaveProfile validates and upserts a user's profile.
func (s *UserService) SaveProfile(ctx context.Context, userID int64, profile *model.UserProfile) (*model.UserProfile, error) {
	if profile == nil {
		return nil, apperror.ValidationFailed("profile", "profile body is required")
	}

	profile.UserID = userID
	profile.Bio = strings.TrimSpace(profile.Bio)
	if len(profile.Bio) > 2000 {
		return nil, apperror.ValidationFailed("bio", "bio must be 2000 characters or fewer")
	}
	if len(profile.Instruments) > 20 {
		return nil, apperror.ValidationFailed("instruments", "at most 20 instruments")
	}

	if err := s.users.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/user: saving profile: %w", err)
	}

	s.logger.Info("profile saved", slog.Int64("userID", userID))
	return profile, nil
}
