package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

var _ repository.AchievementRepository = (*AchievementDB)(nil)

// AchievementDB is the achievement catalog + awards slice of the store.
type AchievementDB struct {
	conn *sql.DB
}

// Achievements returns the achievement repository view of the store.
func (db *DB) Achievements() *AchievementDB {
	return &AchievementDB{conn: db.conn}
}

func (a *AchievementDB) ListAll(ctx context.Context) ([]model.Achievement, error) {
	rows, err := a.conn.QueryContext(ctx,
		`SELECT achievement_id, title, description, condition_type, condition_value, icon_url, created_at
		 FROM achievements
		 ORDER BY condition_type, condition_value`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing achievements: %w", err)
	}
	defer rows.Close()

	achievements := []model.Achievement{}
	for rows.Next() {
		var ach model.Achievement
		if err := rows.Scan(
			&ach.AchievementID,
			&ach.Title,
			&ach.Description,
			&ach.ConditionType,
			&ach.ConditionValue,
			&ach.IconURL,
			&ach.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning achievement: %w", err)
		}
		achievements = append(achievements, ach)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating achievements: %w", err)
	}
	return achievements, nil
}

func (a *AchievementDB) ListForUser(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	rows, err := a.conn.QueryContext(ctx,
		`SELECT ua.user_achievement_id, ua.user_id, ua.achievement_id, ua.earned_at,
		        a.title, a.description, a.icon_url
		 FROM user_achievements ua
		 JOIN achievements a ON a.achievement_id = ua.achievement_id
		 WHERE ua.user_id = ?
		 ORDER BY ua.earned_at, ua.user_achievement_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing achievements of user %d: %w", userID, err)
	}
	defer rows.Close()

	earned := []model.UserAchievement{}
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(
			&ua.UserAchievementID,
			&ua.UserID,
			&ua.AchievementID,
			&ua.EarnedAt,
			&ua.Title,
			&ua.Description,
			&ua.IconURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user achievement: %w", err)
		}
		earned = append(earned, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user achievements: %w", err)
	}
	return earned, nil
}

// Award grants an achievement, returning false when the user already has
// it. INSERT OR IGNORE rides on UNIQUE(user_id, achievement_id), so the
// award pass can re-run after every session without double-granting.
func (a *AchievementDB) Award(ctx context.Context, userID, achievementID int64) (bool, error) {
	res, err := a.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id, earned_at)
		 VALUES (?, ?, ?)`,
		userID, achievementID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("sqlite: awarding achievement %d to user %d: %w", achievementID, userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking achievement award: %w", err)
	}
	return affected > 0, nil
}
