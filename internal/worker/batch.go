package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// requeueBackoff pauses a worker after pushing failed rows back, so a down
// database is not hammered.
const requeueBackoff = 2 * time.Second

// queueClient is the part of *redis.Client a worker uses.
type queueClient interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// archiveDB is the part of *pgxpool.Pool a worker uses.
type archiveDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// batchLoop drains one Redis list into Postgres. Items are written in
// batches; a failed batch is retried row by row and rows that still fail
// go back to the tail of the list.
type batchLoop[T any] struct {
	queue   string
	rdb     queueClient
	bulk    func(ctx context.Context, batch []T) error
	single  func(ctx context.Context, item T) error
	label   func(item T) string
	backoff time.Duration
	log     zerolog.Logger
}

func (l *batchLoop[T]) run(ctx context.Context) {
	l.log.Info().Str("queue", l.queue).Msg("Worker started")

	batch := make([]T, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 && (len(batch) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			l.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		if ctx.Err() != nil {
			l.log.Info().Int("pending", len(batch)).Msg("Worker stopping, flushing remaining batch")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			l.flush(shutdownCtx, batch)
			cancel()
			return
		}

		if item, ok := l.next(ctx); ok {
			batch = append(batch, item)
		}
	}
}

// next pops one item, waiting at most PollTimeout.
func (l *batchLoop[T]) next(ctx context.Context) (T, bool) {
	var item T

	res, err := l.rdb.BLPop(ctx, PollTimeout, l.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			l.log.Error().Err(err).Msg("Redis connection error, retrying")
			l.sleep(ctx, time.Second)
		}
		return item, false
	}
	if len(res) < 2 {
		return item, false
	}

	if err := json.Unmarshal([]byte(res[1]), &item); err != nil {
		l.log.Error().Err(err).Str("data", res[1]).Msg("Discarding malformed JSON")
		return item, false
	}
	return item, true
}

func (l *batchLoop[T]) flush(ctx context.Context, batch []T) {
	if len(batch) == 0 {
		return
	}

	err := l.bulk(ctx, batch)
	if err == nil {
		l.log.Debug().Int("count", len(batch)).Msg("Batch archived")
		return
	}
	l.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, falling back to single rows")

	var failed []T
	for _, item := range batch {
		if err := l.single(ctx, item); err != nil {
			l.log.Error().Err(err).Str("item", l.label(item)).Msg("Insert failed, requeueing")
			failed = append(failed, item)
		}
	}
	l.requeue(ctx, failed)
}

// requeue pushes items back in one RPUSH.
func (l *batchLoop[T]) requeue(ctx context.Context, items []T) {
	if len(items) == 0 {
		return
	}

	values := make([]interface{}, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			l.log.Error().Err(err).Str("item", l.label(item)).Msg("Cannot encode item for requeue, dropping")
			continue
		}
		values = append(values, data)
	}

	if err := l.rdb.RPush(ctx, l.queue, values...).Err(); err != nil {
		l.log.Error().Err(err).Int("count", len(values)).Msg("CRITICAL: requeue failed, archive rows lost")
		return
	}
	l.log.Info().Int("count", len(values)).Msg("Requeued failed rows")
	l.sleep(ctx, l.backoff)
}

func (l *batchLoop[T]) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
