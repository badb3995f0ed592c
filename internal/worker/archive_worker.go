package worker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
)

const insertHistorySQL = `
	INSERT INTO assessment_history
		(record_id, module_id, module, score, total, duration_seconds, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (record_id) DO NOTHING`

// bulkHistorySQL writes a whole batch with one UNNEST statement. Records
// already archived are skipped, so a requeued record is never duplicated.
const bulkHistorySQL = `
	INSERT INTO assessment_history
		(record_id, module_id, module, score, total, duration_seconds, finished_at)
	SELECT * FROM UNNEST(
		$1::text[], $2::text[], $3::text[], $4::int[], $5::int[], $6::int[], $7::timestamptz[]
	)
	ON CONFLICT (record_id) DO NOTHING`

// ArchiveWorker drains persist_history_queue into assessment_history.
type ArchiveWorker struct {
	db   archiveDB
	loop *batchLoop[historyPayload]
}

func NewArchiveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ArchiveWorker {
	return newArchiveWorker(pool, rdb, log)
}

func newArchiveWorker(db archiveDB, rdb queueClient, log zerolog.Logger) *ArchiveWorker {
	w := &ArchiveWorker{db: db}
	w.loop = &batchLoop[historyPayload]{
		queue:   config.WorkerKey.PersistHistoryQueue,
		rdb:     rdb,
		bulk:    w.bulkInsert,
		single:  w.insertSingle,
		label:   func(p historyPayload) string { return p.RecordID },
		backoff: requeueBackoff,
		log:     log.With().Str("component", "archive_worker").Logger(),
	}
	return w
}

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *ArchiveWorker) Start(ctx context.Context) {
	w.loop.run(ctx)
}

func (w *ArchiveWorker) bulkInsert(ctx context.Context, batch []historyPayload) error {
	n := len(batch)
	ids := make([]string, 0, n)
	moduleIDs := make([]string, 0, n)
	modules := make([]string, 0, n)
	scores := make([]int, 0, n)
	totals := make([]int, 0, n)
	durations := make([]int, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, p := range batch {
		ids = append(ids, p.RecordID)
		moduleIDs = append(moduleIDs, p.ModuleID)
		modules = append(modules, p.Module)
		scores = append(scores, p.Score)
		totals = append(totals, p.Total)
		durations = append(durations, p.DurationSeconds)
		finishedAts = append(finishedAts, p.FinishedAt)
	}

	_, err := w.db.Exec(ctx, bulkHistorySQL, ids, moduleIDs, modules, scores, totals, durations, finishedAts)
	return err
}

func (w *ArchiveWorker) insertSingle(ctx context.Context, p historyPayload) error {
	_, err := w.db.Exec(ctx, insertHistorySQL,
		p.RecordID, p.ModuleID, p.Module, p.Score, p.Total, p.DurationSeconds, p.FinishedAt,
	)
	return err
}
