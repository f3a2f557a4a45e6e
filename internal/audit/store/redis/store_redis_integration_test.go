//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mentorlab/internal/audit"
	redisstore "mentorlab/internal/audit/store/redis"
	id "mentorlab/pkg/domain"
	"mentorlab/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *redisstore.Store
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = redisstore.New(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newEvent(actor id.UserID, occurredAt time.Time) audit.Event {
	return audit.Event{
		ActorID:       actor,
		Action:        id.ActionUpdate,
		EntityType:    id.EntityComment,
		EntityID:      "c-1",
		SourceAddress: "203.0.113.9",
		ClientAgent:   "unknown",
		OccurredAt:    occurredAt,
	}
}

func (s *RedisStoreSuite) TestAppendAndRoundTrip() {
	ctx := context.Background()
	actor := id.NewUserID()
	at := time.Now().UTC().Truncate(time.Millisecond)

	stored, err := s.store.Append(ctx, s.newEvent(actor, at))
	s.Require().NoError(err)
	s.False(stored.ID.IsNil())

	got, err := s.store.QueryByActor(ctx, actor, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	e := got[0]
	s.Equal(stored.ID, e.ID)
	s.Equal(actor, e.ActorID)
	s.Equal(id.ActionUpdate, e.Action)
	s.Equal(id.EntityComment, e.EntityType)
	s.True(e.OccurredAt.Equal(at))
}

func (s *RedisStoreSuite) TestQueryByTimeRange() {
	ctx := context.Background()
	actor := id.NewUserID()
	now := time.Now().UTC()

	inside := s.newEvent(actor, now.Add(-10*time.Minute))
	outside := s.newEvent(actor, now.Add(-3*time.Hour))
	for _, e := range []audit.Event{inside, outside} {
		_, err := s.store.Append(ctx, e)
		s.Require().NoError(err)
	}

	got, err := s.store.QueryByTimeRange(ctx, now.Add(-time.Hour), now, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(got[0].OccurredAt.Equal(inside.OccurredAt))
}

func (s *RedisStoreSuite) TestQueryByTimeRangeDescending() {
	ctx := context.Background()
	actor := id.NewUserID()
	now := time.Now().UTC()

	for _, offset := range []time.Duration{-30 * time.Minute, -5 * time.Minute, -15 * time.Minute} {
		_, err := s.store.Append(ctx, s.newEvent(actor, now.Add(offset)))
		s.Require().NoError(err)
	}

	got, err := s.store.QueryByTimeRange(ctx, now.Add(-time.Hour), now, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.True(got[0].OccurredAt.After(got[1].OccurredAt))
	s.True(got[1].OccurredAt.After(got[2].OccurredAt))
}

func (s *RedisStoreSuite) TestQueryByEntityWithLimit() {
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		e := s.newEvent(id.NewUserID(), now.Add(-time.Duration(i)*time.Minute))
		e.EntityID = "c-7"
		_, err := s.store.Append(ctx, e)
		s.Require().NoError(err)
	}

	got, err := s.store.QueryByEntity(ctx, id.EntityComment, "c-7", 2)
	s.Require().NoError(err)
	s.Len(got, 2)
}
