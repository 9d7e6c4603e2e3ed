// Package analytics records gamification telemetry.
// Events are best-effort: producers hand them to an Emitter that never blocks
// and never fails, and a background dispatcher writes them to the configured sinks.
package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventPointsEarned          = "points_earned"
	EventBadgeEarned           = "badge_earned"
	EventLevelUp               = "level_up"
	EventNotificationDisplayed = "notification_displayed"
	EventNotificationClicked   = "notification_clicked"
	EventNotificationDismissed = "notification_dismissed"
	EventRewardsPageViewed     = "rewards_page_viewed"
	EventBadgeDetailsViewed    = "badge_details_viewed"
	EventLeaderboardViewed     = "leaderboard_viewed"
	EventReportSubmitted       = "report_submitted"
	EventReportValidated       = "report_validated"
)

// Event categories
const (
	CategoryGamification = "gamification"
	CategoryNotification = "notification"
	CategoryEngagement   = "engagement"
	CategoryUserAction   = "user_action"
)

// Sources
const (
	SourceBackend  = "backend"
	SourceFrontend = "frontend"
	SourceAPI      = "api"
)

// Event is one row of gamification_analytics.
type Event struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	UserID       *uuid.UUID     `json:"userId,omitempty" db:"user_id"`
	Type         string         `json:"eventType" db:"event_type"`
	Category     string         `json:"eventCategory" db:"event_category"`
	Source       string         `json:"source" db:"source"`
	PointsValue  *int           `json:"pointsValue,omitempty" db:"points_value"`
	BadgeCode    *string        `json:"badgeCode,omitempty" db:"badge_code"`
	LevelReached *int           `json:"levelReached,omitempty" db:"level_reached"`
	Data         map[string]any `json:"eventData,omitempty" db:"event_data"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}

// NewEvent fills the identifier, the timestamp and the default category and source.
func NewEvent(eventType string, userID uuid.UUID) Event {
	return Event{
		ID:        uuid.New(),
		UserID:    &userID,
		Type:      eventType,
		Category:  CategoryGamification,
		Source:    SourceBackend,
		CreatedAt: time.Now(),
	}
}

// PointsEarned describes a positive ledger movement.
func PointsEarned(userID uuid.UUID, points int, reason string, meta map[string]any) Event {
	e := NewEvent(EventPointsEarned, userID)
	e.PointsValue = &points
	e.Data = map[string]any{"reason": reason}
	for k, v := range meta {
		e.Data[k] = v
	}
	return e
}

// BadgeEarned describes a badge grant.
func BadgeEarned(userID uuid.UUID, code, name string, pointsReward int) Event {
	e := NewEvent(EventBadgeEarned, userID)
	e.BadgeCode = &code
	e.PointsValue = &pointsReward
	e.Data = map[string]any{"badgeName": name}
	return e
}

// LevelUp describes a promotion.
func LevelUp(userID uuid.UUID, newLevel int, levelName string, previousLevel int) Event {
	e := NewEvent(EventLevelUp, userID)
	e.LevelReached = &newLevel
	e.Data = map[string]any{"levelName": levelName, "previousLevel": previousLevel}
	return e
}

// ReportValidated describes a moderator accepting a report.
func ReportValidated(userID, reportID, adminID uuid.UUID) Event {
	e := NewEvent(EventReportValidated, userID)
	e.Category = CategoryUserAction
	e.Data = map[string]any{"reportId": reportID.String(), "validatedBy": adminID.String()}
	return e
}

// Stats aggregates the events of a period.
type Stats struct {
	TotalPointsEarned int64            `json:"totalPointsEarned"`
	TotalBadgesEarned int64            `json:"totalBadgesEarned"`
	TotalLevelUps     int64            `json:"totalLevelUps"`
	UniqueActiveUsers int64            `json:"uniqueActiveUsers"`
	EventsByType      map[string]int64 `json:"eventsByType"`
}

// BadgePopularity is the number of grants of one badge.
type BadgePopularity struct {
	BadgeCode string `json:"badgeCode"`
	Count     int64  `json:"count"`
}
