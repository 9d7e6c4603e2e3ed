// Package jobs runs background tasks on a cron schedule.
// scheduler.go registers the analytics retention purge.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Purger deletes analytics events past their retention.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Scheduler owns the cron loop.
type Scheduler struct {
	cron     *cron.Cron
	purger   Purger
	schedule string
	location *time.Location
}

// NewScheduler creates a scheduler in the given IANA timezone; UTC when it cannot be loaded.
func NewScheduler(purger Purger, schedule, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Could not load %s, using UTC", timezone)
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		purger:   purger,
		schedule: schedule,
		location: loc,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Info("[CRON] Analytics retention purge")
		if _, err := s.purger.Purge(ctx); err != nil {
			log.WithError(err).Error("[CRON] Analytics purge failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid ANALYTICS_PURGE_SCHEDULE %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.Infof("Scheduler started (%s)", s.location)
	return nil
}

// Entries returns the registered jobs.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}
