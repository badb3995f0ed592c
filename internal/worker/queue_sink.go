package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/session"
)

// pusher is the slice of the Redis client the sink needs.
type pusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// QueueSink mirrors engine events onto the Redis persistence queues. The
// archive and proctor workers drain them into Postgres.
type QueueSink struct {
	rdb      pusher
	duration int
	timeout  time.Duration
	log      zerolog.Logger
}

// NewQueueSink creates a QueueSink. duration is the session length recorded
// with every archived attempt.
func NewQueueSink(rdb pusher, duration int, log zerolog.Logger) *QueueSink {
	return &QueueSink{
		rdb:      rdb,
		duration: duration,
		timeout:  2 * time.Second,
		log:      log.With().Str("component", "queue_sink").Logger(),
	}
}

// Publish implements session.Sink.
func (s *QueueSink) Publish(ev session.Event) {
	key, payload, ok := s.payloadFor(ev)
	if !ok {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", string(ev.Type)).Msg("Failed to encode queue payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.rdb.RPush(ctx, key, raw).Err(); err != nil {
		s.log.Error().Err(err).Str("queue", key).Msg("Failed to enqueue event")
	}
}

func (s *QueueSink) payloadFor(ev session.Event) (string, any, bool) {
	switch ev.Type {
	case session.EventSubmitted:
		if ev.Record == nil {
			return "", nil, false
		}
		finished, err := time.Parse(time.RFC3339, ev.Record.Date)
		if err != nil {
			finished = ev.At
		}
		return config.WorkerKey.PersistHistoryQueue, historyPayload{
			RecordID:        ev.Record.ID,
			ModuleID:        ev.Record.ModuleID,
			Module:          ev.Record.Module,
			Score:           ev.Record.Score,
			Total:           ev.Record.Total,
			DurationSeconds: s.duration,
			FinishedAt:      finished.UTC(),
		}, true

	case session.EventProctor:
		if ev.Entry == nil {
			return "", nil, false
		}
		return config.WorkerKey.PersistProctorQueue, proctorPayload{
			ModuleID:   ev.ModuleID,
			Signal:     string(ev.Entry.Signal),
			Severity:   string(ev.Entry.Severity),
			Message:    ev.Entry.Message,
			RecordedAt: ev.Entry.Timestamp.UTC(),
		}, true
	}
	return "", nil, false
}
