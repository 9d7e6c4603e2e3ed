package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.channel = channel
	p.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	}
	return cmd
}

func TestRedisSink_Write(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewRedisSinkWithClient(pub, "gamification-events")

	e := BadgeEarned(uuid.New(), "FIRST_REPORT", "Premier Pas", 5)
	require.NoError(t, sink.Write(context.Background(), e))
	assert.Equal(t, "gamification-events", pub.channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, EventBadgeEarned, decoded["eventType"])
	assert.Equal(t, "FIRST_REPORT", decoded["badgeCode"])
	assert.NoError(t, sink.Close())
}

func TestRedisSink_WriteError(t *testing.T) {
	sink := NewRedisSinkWithClient(&fakePublisher{err: errors.New("i/o timeout")}, "c")
	err := sink.Write(context.Background(), NewEvent(EventLevelUp, uuid.New()))
	assert.ErrorContains(t, err, "publish to redis")
}
