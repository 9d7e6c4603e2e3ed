// Package levels promotes users through point-threshold tiers.
// A user's level only ever goes up.
package levels

import "github.com/google/uuid"

// Level is one tier of the catalog.
type Level struct {
	ID          uuid.UUID `json:"id" db:"id"`
	LevelNumber int       `json:"level" db:"level_number"`
	Name        string    `json:"name" db:"name"`
	MinPoints   int       `json:"minPoints" db:"min_points"`
	Icon        *string   `json:"icon,omitempty" db:"icon"`
}

// NextLevel is the tier after the user's current one.
type NextLevel struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
}

// Progress measures the way from the current tier to the next one.
type Progress struct {
	Current    int `json:"current"`
	Required   int `json:"required"`
	Percentage int `json:"percentage"`
}

// Info is the level summary of one user.
type Info struct {
	Level     int        `json:"level"`
	Name      string     `json:"name"`
	Icon      *string    `json:"icon,omitempty"`
	Points    int        `json:"points"`
	NextLevel *NextLevel `json:"nextLevel"`
	Progress  Progress   `json:"progress"`
}
