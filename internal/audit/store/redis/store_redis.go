// Package redis implements the audit log store on Redis sorted sets. Each
// event is indexed by its OccurredAt unix-nano score, so the aggregator's
// time-range reads map directly onto ZREVRANGEBYSCORE.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mentorlab/internal/audit"
	id "mentorlab/pkg/domain"
)

const (
	timelineKey     = "audit:events"
	actorKeyPrefix  = "audit:actor:"
	entityKeyPrefix = "audit:entity:"
)

// Store implements audit.Store over a Redis client.
type Store struct {
	client redis.Cmdable
}

func New(client redis.Cmdable) *Store {
	return &Store{client: client}
}

// payload is the JSON form stored as the sorted-set member.
type payload struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actor_id"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Details       string    `json:"details,omitempty"`
	SourceAddress string    `json:"source_address"`
	ClientAgent   string    `json:"client_agent"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) (audit.Event, error) {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}

	raw, err := json.Marshal(payload{
		ID:            event.ID.String(),
		ActorID:       event.ActorID.String(),
		Action:        event.Action.String(),
		EntityType:    event.EntityType.String(),
		EntityID:      event.EntityID,
		Details:       event.Details,
		SourceAddress: event.SourceAddress,
		ClientAgent:   event.ClientAgent,
		OccurredAt:    event.OccurredAt,
	})
	if err != nil {
		return audit.Event{}, fmt.Errorf("marshal audit event: %w", err)
	}

	member := redis.Z{
		Score:  float64(event.OccurredAt.UnixNano()),
		Member: raw,
	}

	// One timeline index plus two lookup indexes sharing the member bytes.
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, timelineKey, member)
	pipe.ZAdd(ctx, actorKey(event.ActorID), member)
	pipe.ZAdd(ctx, entityKey(event.EntityType, event.EntityID), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return audit.Event{}, fmt.Errorf("append audit event: %w", err)
	}
	return event, nil
}

func (s *Store) QueryByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]audit.Event, error) {
	return s.rangeByScore(ctx, timelineKey, &redis.ZRangeBy{
		Min:   strconv.FormatInt(start.UnixNano(), 10),
		Max:   strconv.FormatInt(end.UnixNano(), 10),
		Count: count(limit),
	})
}

func (s *Store) QueryByActor(ctx context.Context, actorID id.UserID, limit int) ([]audit.Event, error) {
	return s.rangeByScore(ctx, actorKey(actorID), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "+inf",
		Count: count(limit),
	})
}

func (s *Store) QueryByEntity(ctx context.Context, entityType id.EntityType, entityID string, limit int) ([]audit.Event, error) {
	return s.rangeByScore(ctx, entityKey(entityType, entityID), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "+inf",
		Count: count(limit),
	})
}

func (s *Store) rangeByScore(ctx context.Context, key string, rng *redis.ZRangeBy) ([]audit.Event, error) {
	raws, err := s.client.ZRevRangeByScore(ctx, key, rng).Result()
	if err != nil {
		return nil, fmt.Errorf("range audit events: %w", err)
	}

	events := make([]audit.Event, 0, len(raws))
	for _, raw := range raws {
		var p payload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		event, err := p.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (p payload) toEvent() (audit.Event, error) {
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse stored event id: %w", err)
	}
	actorID, err := uuid.Parse(p.ActorID)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse stored actor id: %w", err)
	}
	return audit.Event{
		ID:            id.EventID(eventID),
		ActorID:       id.UserID(actorID),
		Action:        id.Action(p.Action),
		EntityType:    id.EntityType(p.EntityType),
		EntityID:      p.EntityID,
		Details:       p.Details,
		SourceAddress: p.SourceAddress,
		ClientAgent:   p.ClientAgent,
		OccurredAt:    p.OccurredAt,
	}, nil
}

// count maps "no limit" onto go-redis's zero Count, which omits the LIMIT
// clause entirely.
func count(limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return int64(limit)
}

func actorKey(actorID id.UserID) string {
	return actorKeyPrefix + actorID.String()
}

func entityKey(entityType id.EntityType, entityID string) string {
	return entityKeyPrefix + entityType.String() + ":" + entityID
}
