// Package rewards runs the reward pipeline after a user activity.
package rewards

import (
	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/levels"
)

// BadgeReward is a badge granted by one activity.
type BadgeReward struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Icon         *string `json:"icon"`
	PointsReward int     `json:"pointsReward"`
}

// LevelReward is the level reached by one activity.
type LevelReward struct {
	Level int     `json:"level"`
	Name  string  `json:"name"`
	Icon  *string `json:"icon"`
}

// Summary is what one activity earned. Badges is never nil; LevelUp is nil without promotion.
type Summary struct {
	Badges  []BadgeReward `json:"badges"`
	LevelUp *LevelReward  `json:"levelUp"`
}

// Empty reports whether nothing was earned.
func (s *Summary) Empty() bool {
	return len(s.Badges) == 0 && s.LevelUp == nil
}

func newSummary(granted []*badges.Badge, level *levels.Level) *Summary {
	s := &Summary{Badges: make([]BadgeReward, 0, len(granted))}
	for _, b := range granted {
		s.Badges = append(s.Badges, BadgeReward{
			Code:         b.Code,
			Name:         b.Name,
			Icon:         b.Icon,
			PointsReward: b.PointsReward,
		})
	}
	if level != nil {
		s.LevelUp = &LevelReward{Level: level.LevelNumber, Name: level.Name, Icon: level.Icon}
	}
	return s
}
