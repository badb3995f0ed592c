package worker

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
)

var proctorColumns = []string{"module_id", "signal", "severity", "message", "recorded_at"}

// ProctorWorker drains persist_proctor_queue into proctor_events using COPY.
type ProctorWorker struct {
	db   archiveDB
	loop *batchLoop[proctorPayload]
}

func NewProctorWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ProctorWorker {
	return newProctorWorker(pool, rdb, log)
}

func newProctorWorker(db archiveDB, rdb queueClient, log zerolog.Logger) *ProctorWorker {
	w := &ProctorWorker{db: db}
	w.loop = &batchLoop[proctorPayload]{
		queue:   config.WorkerKey.PersistProctorQueue,
		rdb:     rdb,
		bulk:    w.copyBatch,
		single:  w.insertSingle,
		label:   func(p proctorPayload) string { return p.ModuleID + "/" + p.Signal },
		backoff: requeueBackoff,
		log:     log.With().Str("component", "proctor_worker").Logger(),
	}
	return w
}

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *ProctorWorker) Start(ctx context.Context) {
	w.loop.run(ctx)
}

func (w *ProctorWorker) copyBatch(ctx context.Context, batch []proctorPayload) error {
	_, err := w.db.CopyFrom(ctx, pgx.Identifier{"proctor_events"}, proctorColumns,
		pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
			p := batch[i]
			return []any{p.ModuleID, p.Signal, p.Severity, p.Message, p.RecordedAt}, nil
		}),
	)
	return err
}

func (w *ProctorWorker) insertSingle(ctx context.Context, p proctorPayload) error {
	_, err := w.db.Exec(ctx,
		`INSERT INTO proctor_events (module_id, signal, severity, message, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ModuleID, p.Signal, p.Severity, p.Message, p.RecordedAt,
	)
	return err
}
