package badges

// IsEligible reports whether activity meets b's condition.
// Streak badges are recognized but never earned automatically: streaks are not tracked yet.
// Manual badges are only granted through AwardBadgeManually.
func IsEligible(b *Badge, activity Activity) bool {
	switch b.ConditionType {
	case ConditionReportsCount:
		return activity.ValidatedReports >= b.ConditionValue
	case ConditionPointsTotal:
		return activity.Points >= b.ConditionValue
	case ConditionStreakDays, ConditionManual:
		return false
	default:
		return false
	}
}

// Eligible filters candidates, keeping their order.
func Eligible(candidates []*Badge, activity Activity) []*Badge {
	var out []*Badge
	for _, b := range candidates {
		if IsEligible(b, activity) {
			out = append(out, b)
		}
	}
	return out
}
