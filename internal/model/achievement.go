package model

import "time"

// Achievement condition types. The condition value is compared against the
// user's totals when awarding.
const (
	AchievementConditionPracticeTime = "practice_time" // total seconds practiced
	AchievementConditionSessionCount = "session_count" // number of sessions logged
)

// Achievement is one entry in the (seeded) achievement catalog.
type Achievement struct {
	AchievementID  int64     `json:"achievementId"  db:"achievement_id"`
	Title          string    `json:"title"          db:"title"`
	Description    string    `json:"description"    db:"description"`
	ConditionType  string    `json:"conditionType"  db:"condition_type"`
	ConditionValue int       `json:"conditionValue" db:"condition_value"`
	IconURL        string    `json:"iconUrl"        db:"icon_url"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
}

// UserAchievement records that a user earned an achievement.
// (user_id, achievement_id) is UNIQUE — awarding is idempotent.
type UserAchievement struct {
	UserAchievementID int64     `json:"userAchievementId" db:"user_achievement_id"`
	UserID            int64     `json:"userId"            db:"user_id"`
	AchievementID     int64     `json:"achievementId"     db:"achievement_id"`
	EarnedAt          time.Time `json:"earnedAt"          db:"earned_at"`

	// Catalog fields joined in for "my achievements" listings.
	Title       string `json:"title"       db:"title"`
	Description string `json:"description" db:"description"`
	IconURL     string `json:"iconUrl"     db:"icon_url"`
}
