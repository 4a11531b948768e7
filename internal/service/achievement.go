package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

// AchievementService exposes the achievement catalog and a user's earned
// set. Awarding happens in PracticeService after each logged session.
type AchievementService struct {
	achievements repository.AchievementRepository
	logger       *slog.Logger
}

func NewAchievementService(achievements repository.AchievementRepository, logger *slog.Logger) *AchievementService {
	return &AchievementService{achievements: achievements, logger: logger}
}

// Catalog lists every achievement that can be earned.
func (s *AchievementService) Catalog(ctx context.Context) ([]model.Achievement, error) {
	achievements, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/achievement: listing catalog: %w", err)
	}
	return achievements, nil
}

// Earned lists the achievements a user has unlocked, oldest first.
func (s *AchievementService) Earned(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	earned, err := s.achievements.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/achievement: listing for user %d: %w", userID, err)
	}
	return earned, nil
}
