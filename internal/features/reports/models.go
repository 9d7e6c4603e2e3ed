// Package reports moderates citizen reports. Validating one credits the
// author and runs the reward pipeline in the same transaction.
package reports

import (
	"time"

	"github.com/google/uuid"

	"ecosignal.fr/rewards/internal/features/rewards"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusRejected  = "rejected"
)

// Report is the moderation view of one reports row.
type Report struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	ContainerID uuid.UUID  `json:"containerId" db:"container_id"`
	Type        string     `json:"type" db:"type"`
	Status      string     `json:"status" db:"status"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty" db:"validated_at"`
	ValidatedBy *uuid.UUID `json:"validatedBy,omitempty" db:"validated_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// ValidationResult is what a validation produced once committed.
type ValidationResult struct {
	Report        *Report          `json:"report"`
	PointsAwarded int              `json:"pointsAwarded"`
	NewTotal      int              `json:"newTotal"`
	Rewards       *rewards.Summary `json:"rewards"`
}
