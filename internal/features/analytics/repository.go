// Package analytics - repository.go stores events in gamification_analytics
// and answers the aggregate queries run by the admin tooling.
package analytics

import (
	"context"
	"fmt"
	"time"

	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository is the Postgres sink.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the Postgres sink.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// Name identifies the sink in logs and metrics.
func (r *Repository) Name() string { return "postgres" }

// Write inserts one event. It runs on the pool, never inside a business transaction.
func (r *Repository) Write(ctx context.Context, e Event) error {
	query := `
		INSERT INTO gamification_analytics
			(id, user_id, event_type, event_category, event_data, points_value, badge_code, level_reached, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		e.ID, e.UserID, e.Type, e.Category, e.Data,
		e.PointsValue, e.BadgeCode, e.LevelReached, e.Source, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// period keeps events with since <= created_at <= until; nil bounds are open.
const period = `($1::timestamptz IS NULL OR created_at >= $1) AND ($2::timestamptz IS NULL OR created_at <= $2)`

// GlobalStats aggregates the events between since and until.
func (r *Repository) GlobalStats(ctx context.Context, since, until *time.Time) (*Stats, error) {
	stats := &Stats{EventsByType: map[string]int64{}}

	query := `
		SELECT
			COALESCE(SUM(points_value) FILTER (WHERE event_type = 'points_earned'), 0),
			COUNT(*) FILTER (WHERE event_type = 'badge_earned'),
			COUNT(*) FILTER (WHERE event_type = 'level_up'),
			COUNT(DISTINCT user_id)
		FROM gamification_analytics
		WHERE ` + period
	err := r.db.QueryRow(ctx, query, since, until).Scan(
		&stats.TotalPointsEarned, &stats.TotalBadgesEarned, &stats.TotalLevelUps, &stats.UniqueActiveUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics totals: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT event_type, COUNT(*)
		FROM gamification_analytics
		WHERE `+period+`
		GROUP BY event_type
	`, since, until)
	if err != nil {
		return nil, fmt.Errorf("analytics events by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("scan events by type: %w", err)
		}
		stats.EventsByType[eventType] = count
	}
	return stats, rows.Err()
}

// PopularBadges returns the most granted badges, most frequent first.
func (r *Repository) PopularBadges(ctx context.Context, limit int) ([]BadgePopularity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT badge_code, COUNT(*) AS cnt
		FROM gamification_analytics
		WHERE event_type = 'badge_earned' AND badge_code IS NOT NULL
		GROUP BY badge_code
		ORDER BY cnt DESC, badge_code
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular badges: %w", err)
	}
	defer rows.Close()

	var result []BadgePopularity
	for rows.Next() {
		var b BadgePopularity
		if err := rows.Scan(&b.BadgeCode, &b.Count); err != nil {
			return nil, fmt.Errorf("scan popular badge: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// PurgeOlderThan deletes events created before cutoff and returns how many were removed.
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM gamification_analytics WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge analytics: %w", err)
	}
	return tag.RowsAffected(), nil
}
