package session

import (
	"context"
	"errors"

	"github.com/stemsi/exstem-prep/internal/model"
)

// ErrMalformedCheckpoint is returned by stores when the checkpoint slot holds
// data that cannot be decoded.
var ErrMalformedCheckpoint = errors.New("malformed checkpoint")

// Store holds the two durable slots: the single active-session checkpoint and
// the append-only history list. Writes are last-write-wins and non-transactional.
type Store interface {
	// LoadCheckpoint returns nil, nil when the slot is empty.
	LoadCheckpoint(ctx context.Context) (*model.Checkpoint, error)
	SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error
	ClearCheckpoint(ctx context.Context) error
	AppendHistory(ctx context.Context, rec model.HistoryRecord) error
	ListHistory(ctx context.Context) ([]model.HistoryRecord, error)
}

// Catalog resolves module ids to immutable modules.
type Catalog interface {
	Get(id string) (*model.Module, error)
}
