// Package badges grants one-time achievements.
// models.go describes the catalog, the grants and the activity snapshot
// eligibility is evaluated against.
package badges

import (
	"time"

	"github.com/google/uuid"
)

// Condition types
const (
	ConditionReportsCount = "reports_count"
	ConditionPointsTotal  = "points_total"
	ConditionStreakDays   = "streak_days"
	ConditionManual       = "manual"
)

// Grant paths, used as metric label
const (
	PathAuto   = "auto"
	PathManual = "manual"
)

// Badge is one catalog row.
type Badge struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Code           string    `json:"code" db:"code"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Icon           *string   `json:"icon,omitempty" db:"icon"`
	Category       string    `json:"category" db:"category"`
	ConditionType  string    `json:"conditionType" db:"condition_type"`
	ConditionValue int       `json:"conditionValue" db:"condition_value"`
	PointsReward   int       `json:"pointsReward" db:"points_reward"`
	IsActive       bool      `json:"isActive" db:"is_active"`
}

// UserBadge is one grant. At most one exists per (UserID, BadgeID).
type UserBadge struct {
	ID       uuid.UUID `db:"id"`
	UserID   uuid.UUID `db:"user_id"`
	BadgeID  uuid.UUID `db:"badge_id"`
	EarnedAt time.Time `db:"earned_at"`
}

// EarnedBadge is a badge together with the moment the user got it.
type EarnedBadge struct {
	Badge    Badge     `json:"badge"`
	EarnedAt time.Time `json:"earnedAt"`
}

// BadgeStatus is a catalog entry flagged for one user.
type BadgeStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earnedAt"`
}

// Activity is what the user had done when evaluation started.
type Activity struct {
	ValidatedReports int
	Points           int
}
