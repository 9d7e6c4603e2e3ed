// Package common - helpers.go formats points and identifiers for ledger
// descriptions and CLI output.
package common

import (
	"fmt"

	"github.com/google/uuid"
)

// ShortID returns the first 8 characters of a UUID, as shown in descriptions.
//
//	ShortID(550e8400-e29b-41d4-a716-446655440000) → "550e8400"
func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}

// PluralizePoints returns "point" or "points" for n.
func PluralizePoints(n int) string {
	if n == 1 || n == -1 {
		return "point"
	}
	return "points"
}

// FormatPoints renders a signed delta, e.g. "+10 points" or "-1 point".
func FormatPoints(delta int) string {
	if delta >= 0 {
		return fmt.Sprintf("+%d %s", delta, PluralizePoints(delta))
	}
	return fmt.Sprintf("%d %s", delta, PluralizePoints(delta))
}

// NullIfEmpty maps "" to a SQL NULL.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
