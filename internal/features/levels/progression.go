package levels

import "math"

// Qualifying returns the highest-numbered level whose threshold is at most
// points, or nil when none is.
func Qualifying(catalog []*Level, points int) *Level {
	var best *Level
	for _, l := range catalog {
		if l.MinPoints > points {
			continue
		}
		if best == nil || l.LevelNumber > best.LevelNumber {
			best = l
		}
	}
	return best
}

// ShouldPromote reports whether target moves a user at currentLevel up.
func ShouldPromote(currentLevel int, target *Level) bool {
	return target != nil && target.LevelNumber > currentLevel
}

// ComputeProgress measures points between current and next.
// Without a next level the user is at the top: {0, 0, 100}.
func ComputeProgress(points int, current, next *Level) Progress {
	if next == nil {
		return Progress{Current: 0, Required: 0, Percentage: 100}
	}
	base := 0
	if current != nil {
		base = current.MinPoints
	}
	p := Progress{
		Current:  points - base,
		Required: next.MinPoints - base,
	}
	if p.Required <= 0 {
		p.Percentage = 100
		return p
	}
	p.Percentage = int(math.Round(float64(p.Current) / float64(p.Required) * 100))
	return p
}

// byNumber finds the level with the given number.
func byNumber(catalog []*Level, number int) *Level {
	for _, l := range catalog {
		if l.LevelNumber == number {
			return l
		}
	}
	return nil
}
