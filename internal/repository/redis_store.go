package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/model"
)

// RedisStore keeps the checkpoint as one string key and history as a list.
type RedisStore struct {
	rdb  *redis.Client
	keys *config.CacheKeyStruct
	log  zerolog.Logger
}

// NewRedisStore creates a RedisStore using the given key namespace.
func NewRedisStore(rdb *redis.Client, keys *config.CacheKeyStruct, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		rdb:  rdb,
		keys: keys,
		log:  log.With().Str("component", "redis_store").Logger(),
	}
}

func (s *RedisStore) LoadCheckpoint(ctx context.Context) (*model.Checkpoint, error) {
	raw, err := s.rdb.Get(ctx, s.keys.CheckpointKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return decodeCheckpoint(raw)
}

// SaveCheckpoint overwrites the single slot (last write wins).
func (s *RedisStore) SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	raw, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.keys.CheckpointKey(), raw, 0).Err(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearCheckpoint(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.keys.CheckpointKey()).Err(); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendHistory(ctx context.Context, rec model.HistoryRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.keys.HistoryKey(), raw).Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// ListHistory returns every record. Entries that fail to decode are skipped.
func (s *RedisStore) ListHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	items, err := s.rdb.LRange(ctx, s.keys.HistoryKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	records := make([]model.HistoryRecord, 0, len(items))
	for _, item := range items {
		var r model.HistoryRecord
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			s.log.Error().Err(err).Str("data", item).Msg("Skipping malformed history entry")
			continue
		}
		records = append(records, r)
	}
	return records, nil
}
