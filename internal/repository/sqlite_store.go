package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/exstem-prep/internal/model"
)

const checkpointSlot = "checkpoint"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS session_slots (
		slot       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_history (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL UNIQUE,
		module_id TEXT NOT NULL,
		module    TEXT NOT NULL,
		score     INTEGER NOT NULL,
		total     INTEGER NOT NULL,
		date      TEXT NOT NULL
	)`,
}

// SQLiteStore keeps the checkpoint and history in a client-local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the tables if needed and returns the store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadCheckpoint(ctx context.Context) (*model.Checkpoint, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_slots WHERE slot = ?`, checkpointSlot,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return decodeCheckpoint([]byte(raw))
}

// SaveCheckpoint overwrites the single slot (last write wins).
func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	raw, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_slots (slot, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (slot) DO UPDATE
		 SET value = excluded.value, updated_at = excluded.updated_at`,
		checkpointSlot, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearCheckpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_slots WHERE slot = ?`, checkpointSlot); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendHistory(ctx context.Context, rec model.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_history (id, module_id, module, score, total, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ModuleID, rec.Module, rec.Score, rec.Total, rec.Date,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, module, score, total, date
		 FROM session_history
		 ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []model.HistoryRecord{}
	for rows.Next() {
		var r model.HistoryRecord
		if err := rows.Scan(&r.ID, &r.ModuleID, &r.Module, &r.Score, &r.Total, &r.Date); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
