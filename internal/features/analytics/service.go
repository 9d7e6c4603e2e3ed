// Package analytics - service.go serves the statistics read by the admin
// tooling and runs the retention purge.
package analytics

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store is what the service needs from the Postgres sink.
type Store interface {
	GlobalStats(ctx context.Context, since, until *time.Time) (*Stats, error)
	PopularBadges(ctx context.Context, limit int) ([]BadgePopularity, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service answers analytics queries and purges old events.
type Service struct {
	store     Store
	retention time.Duration
	now       func() time.Time
}

// NewService keeps events for retentionDays days.
func NewService(store Store, retentionDays int) *Service {
	return &Service{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

func (s *Service) GlobalStats(ctx context.Context, since, until *time.Time) (*Stats, error) {
	return s.store.GlobalStats(ctx, since, until)
}

// PopularBadges defaults to the top 10.
func (s *Service) PopularBadges(ctx context.Context, limit int) ([]BadgePopularity, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.PopularBadges(ctx, limit)
}

// Purge deletes the events that fell out of the retention window.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"deleted": n,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Analytics retention purge done")
	return n, nil
}
