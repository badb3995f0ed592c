package repository

import (
	"encoding/json"
	"fmt"

	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/session"
)

// decodeCheckpoint parses a stored checkpoint. Anything that does not decode
// into a usable checkpoint is reported as session.ErrMalformedCheckpoint.
func decodeCheckpoint(raw []byte) (*model.Checkpoint, error) {
	var cp model.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w: %v", session.ErrMalformedCheckpoint, err)
	}
	if cp.ActiveModuleID == "" {
		return nil, fmt.Errorf("decode checkpoint: %w: missing module id", session.ErrMalformedCheckpoint)
	}
	if cp.Answers == nil {
		cp.Answers = map[string]int{}
	}
	return &cp, nil
}

func encodeCheckpoint(cp model.Checkpoint) ([]byte, error) {
	raw, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return raw, nil
}
