package session

import (
	"time"

	"github.com/stemsi/exstem-prep/internal/model"
)

// EventType identifies what changed in the engine.
type EventType string

const (
	EventState     EventType = "state"
	EventTick      EventType = "tick"
	EventProctor   EventType = "proctor"
	EventAlert     EventType = "alert"
	EventSubmitted EventType = "submitted"
)

// Event is delivered to subscribers after the engine lock is released.
type Event struct {
	// Seq increases by one per event and gives the delivery order.
	Seq              uint64               `json:"seq"`
	Type             EventType            `json:"type"`
	Status           Status               `json:"status"`
	ModuleID         string               `json:"module_id,omitempty"`
	RemainingSeconds int                  `json:"remaining_seconds"`
	Entry            *model.ProctorEntry  `json:"entry,omitempty"`
	Alert            *model.Alert         `json:"alert,omitempty"`
	Record           *model.HistoryRecord `json:"record,omitempty"`
	At               time.Time            `json:"at"`
}

// Sink receives engine events in Seq order. Publish runs outside the engine
// lock and may read engine state, but must not mutate it.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Publish calls f(ev).
func (f SinkFunc) Publish(ev Event) { f(ev) }
