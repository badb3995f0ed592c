package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArchivedAttempt is a finalized attempt mirrored into Postgres together with
// how many proctoring violations it recorded.
type ArchivedAttempt struct {
	RecordID   string    `json:"record_id"`
	ModuleID   string    `json:"module_id"`
	Module     string    `json:"module"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finished_at"`
	Violations int64     `json:"violations"`
}

// ArchiveRepository reads the Postgres archive written by the workers.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository creates a new ArchiveRepository.
func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

// ListRecent returns the most recent archived attempts, newest first.
func (r *ArchiveRepository) ListRecent(ctx context.Context, limit int) ([]ArchivedAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT h.record_id, h.module_id, h.module, h.score, h.total, h.finished_at,
		        COUNT(p.id) FILTER (WHERE p.severity = 'violation')
		 FROM assessment_history h
		 LEFT JOIN proctor_events p ON p.module_id = h.module_id
		      AND p.recorded_at <= h.finished_at
		      AND p.recorded_at >= h.finished_at - make_interval(secs => h.duration_seconds)
		 GROUP BY h.record_id, h.module_id, h.module, h.score, h.total, h.finished_at
		 ORDER BY h.finished_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []ArchivedAttempt{}
	for rows.Next() {
		var a ArchivedAttempt
		if err := rows.Scan(&a.RecordID, &a.ModuleID, &a.Module, &a.Score, &a.Total, &a.FinishedAt, &a.Violations); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
