package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/quizgate/quizgate-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AttemptEventType enumerates lifecycle events published for the admin
// monitor stream.
type AttemptEventType string

const (
	EventAttemptStarted   AttemptEventType = "ATTEMPT_STARTED"
	EventAttemptSubmitted AttemptEventType = "ATTEMPT_SUBMITTED"
	EventAttemptsPurged   AttemptEventType = "ATTEMPTS_PURGED"
)

// AttemptEvent is the JSON payload published on the attempts channel.
type AttemptEvent struct {
	Type           AttemptEventType `json:"type"`
	ExamID         uuid.UUID        `json:"exam_id"`
	AttemptID      *uuid.UUID       `json:"attempt_id,omitempty"`
	StudentID      string           `json:"student_id,omitempty"`
	SequenceNumber int              `json:"sequence_number,omitempty"`
	PurgedCount    int64            `json:"purged_count,omitempty"`
	At             time.Time        `json:"at"`
}

// AttemptEventPublisher fans attempt lifecycle events out over Redis
// PubSub. Publishing is best-effort: a failure is logged and the
// request proceeds — the monitor stream is observability, not state.
type AttemptEventPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAttemptEventPublisher creates a publisher on the given Redis client.
func NewAttemptEventPublisher(rdb *redis.Client, log zerolog.Logger) *AttemptEventPublisher {
	return &AttemptEventPublisher{
		rdb: rdb,
		log: log.With().Str("component", "attempt_events").Logger(),
	}
}

// Publish serializes the event and publishes it on the attempts channel.
func (p *AttemptEventPublisher) Publish(ctx context.Context, ev AttemptEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("type", string(ev.Type)).Msg("Marshal event failed")
		return
	}
	if err := p.rdb.Publish(ctx, config.CacheKey.AttemptEventsChannel(), payload).Err(); err != nil {
		p.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("Publish event failed")
	}
}
