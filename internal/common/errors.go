// Package common holds errors and helpers shared by every feature.
// errors.go defines the error kinds the rewards engine returns. Callers
// tell them apart with errors.Is against the kind or the specific error.
package common

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	// ErrNotFound: the referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict: the operation collides with existing state
	ErrConflict = errors.New("conflict")
	// ErrInvariantViolation: the caller broke a contract (a bug, never a user error)
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrUnauthorized: admin credentials missing or wrong
	ErrUnauthorized = errors.New("unauthorized")
)

// Not found
var (
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrBadgeNotFound  = fmt.Errorf("badge %w", ErrNotFound)
	ErrReportNotFound = fmt.Errorf("report %w", ErrNotFound)
)

// Conflicts
var (
	// ErrBadgeAlreadyHeld: the user already owns the badge
	ErrBadgeAlreadyHeld = fmt.Errorf("%w: user already holds this badge", ErrConflict)
	// ErrReportAlreadyProcessed: the report left the pending state
	ErrReportAlreadyProcessed = fmt.Errorf("%w: report already processed", ErrConflict)
)

// Invariant violations
var (
	// ErrZeroDelta: a points mutation of 0 means the caller computed nothing
	ErrZeroDelta = fmt.Errorf("%w: points delta must be non-zero", ErrInvariantViolation)
	// ErrInvalidPointsParams: reason or reference fields failed validation
	ErrInvalidPointsParams = fmt.Errorf("%w: invalid points parameters", ErrInvariantViolation)
)

// Admin
var (
	ErrAdminNotConfigured = fmt.Errorf("%w: ADMIN_PASSWORD_HASH is not set", ErrUnauthorized)
	ErrWrongPassword      = fmt.Errorf("%w: wrong password", ErrUnauthorized)
	ErrNotAdmin           = fmt.Errorf("%w: not an administrator", ErrUnauthorized)
	ErrTooManyAttempts    = fmt.Errorf("%w: too many failed attempts, retry in an hour", ErrUnauthorized)
)
