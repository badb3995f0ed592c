package repository

import (
	"context"
	"sync"

	"github.com/stemsi/exstem-prep/internal/model"
)

// MemoryStore keeps both slots in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu         sync.Mutex
	checkpoint []byte
	history    []model.HistoryRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadCheckpoint(ctx context.Context) (*model.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkpoint == nil {
		return nil, nil
	}
	return decodeCheckpoint(s.checkpoint)
}

func (s *MemoryStore) SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	raw, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.checkpoint = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearCheckpoint(ctx context.Context) error {
	s.mu.Lock()
	s.checkpoint = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) AppendHistory(ctx context.Context, rec model.HistoryRecord) error {
	s.mu.Lock()
	s.history = append(s.history, rec)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HistoryRecord{}, s.history...), nil
}
