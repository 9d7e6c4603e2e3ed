package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct{ calls int }

func (p *countingPurger) Purge(context.Context) (int64, error) {
	p.calls++
	return 0, nil
}

func TestScheduler_Start(t *testing.T) {
	s := NewScheduler(&countingPurger{}, "30 3 * * *", "Europe/Paris")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	entries := s.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next.In(s.location)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.Equal(t, "Europe/Paris", s.location.String())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingPurger{}, "every night", "Europe/Paris")
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_UnknownTimezone(t *testing.T) {
	s := NewScheduler(&countingPurger{}, "@daily", "Mars/Olympus")
	assert.Equal(t, time.UTC, s.location)
}
