// Package history is the audit trail of reward grants: one row per badge
// and per level-up, never updated once written.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Reward types
const (
	TypeBadge   = "badge"
	TypeLevelUp = "level_up"
	TypeBonus   = "bonus"
)

// Entry is one reward_history row.
type Entry struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      uuid.UUID      `json:"userId" db:"user_id"`
	RewardType  string         `json:"rewardType" db:"reward_type"`
	RewardID    *uuid.UUID     `json:"rewardId,omitempty" db:"reward_id"`
	Description string         `json:"description" db:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}
