// Package ledger keeps user point balances and their append-only audit trail.
// models.go describes one point_history row.
package ledger

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Reasons accepted by point_history.reason
const (
	ReasonReportValidated = "report_validated"
	ReasonBonus           = "bonus"
	ReasonPenalty         = "penalty"
	ReasonOther           = "other"
)

// Reference types
const (
	RefReport = "Report"
	RefBadge  = "Badge"
)

// PointsPerValidatedReport is credited once per validated report.
const PointsPerValidatedReport = 10

// Entry is one immutable balance change.
// Points is the requested delta, even when the balance was floored at zero.
type Entry struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"userId" db:"user_id"`
	Points        int        `json:"points" db:"points"`
	Reason        string     `json:"reason" db:"reason"`
	Description   *string    `json:"description,omitempty" db:"description"`
	ReferenceID   *uuid.UUID `json:"referenceId,omitempty" db:"reference_id"`
	ReferenceType *string    `json:"referenceType,omitempty" db:"reference_type"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// AddPointsParams is the input of Service.AddPoints.
type AddPointsParams struct {
	UserID        uuid.UUID  `validate:"required"`
	Points        int        `validate:"required,min=-2147483648,max=2147483647"`
	Reason        string     `validate:"required,oneof=report_validated bonus penalty other"`
	Description   string     `validate:"max=255"`
	ReferenceID   *uuid.UUID `validate:"required_with=ReferenceType"`
	ReferenceType string     `validate:"required_with=ReferenceID,max=50"`
}

// MaxBalance is the largest balance the INTEGER column holds.
const MaxBalance = math.MaxInt32

// ApplyDelta returns the balance after adding delta to current, floored at
// zero and capped at MaxBalance.
func ApplyDelta(current, delta int) int {
	current = min(max(current, 0), MaxBalance)
	delta = min(max(delta, -MaxBalance), MaxBalance)
	sum := int64(current) + int64(delta)
	if sum < 0 {
		return 0
	}
	if sum > MaxBalance {
		return MaxBalance
	}
	return int(sum)
}
