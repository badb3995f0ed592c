// Package session runs one proctored assessment attempt at a time.
//
// The engine is a state machine over NoSession, Active and Submitted. Every
// entry point (HTTP handlers, the WebSocket stream, the 1-second ticker) takes
// the same lock, so transitions are applied one at a time in arrival order.
// Only one session exists per engine: starting a module overwrites the single
// checkpoint slot.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/metrics"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/proctor"
)

// DefaultDuration is the fixed session length in seconds. It is never derived
// from a module's estimated minutes.
const DefaultDuration = 3600

// Config tunes an Engine.
type Config struct {
	// Duration is the session length in seconds.
	Duration int
	// TickInterval drives Tick automatically. Zero disables the ticker.
	TickInterval time.Duration
	AlertTTL     time.Duration
	StoreTimeout time.Duration
	Now          func() time.Time
}

func (c *Config) normalize() {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.AlertTTL <= 0 {
		c.AlertTTL = proctor.DefaultAlertTTL
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 2 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Engine owns the session lifecycle.
type Engine struct {
	mu      sync.Mutex
	state   State
	module  *model.Module
	monitor *proctor.Monitor
	speed   metrics.SpeedSampler

	// ticker bookkeeping; gen invalidates ticks from a torn-down timer.
	stop chan struct{}
	gen  uint64

	catalog Catalog
	store   Store
	cfg     Config
	log     zerolog.Logger

	// pending holds events queued under mu. emitMu serializes delivery so
	// sinks observe events in seq order.
	pending []Event
	seq     uint64
	emitMu  sync.Mutex

	sinkMu sync.RWMutex
	sinks  []subscription
	nextID int
}

type subscription struct {
	id   int
	sink Sink
}

// NewEngine creates an Engine in the NoSession state.
func NewEngine(catalog Catalog, store Store, cfg Config, log zerolog.Logger) *Engine {
	cfg.normalize()
	return &Engine{
		state:   NoSession{},
		monitor: proctor.NewMonitor(cfg.AlertTTL, cfg.Now),
		catalog: catalog,
		store:   store,
		cfg:     cfg,
		log:     log.With().Str("component", "session_engine").Logger(),
	}
}

// Subscribe registers a sink and returns a function that removes it. Sinks
// receive each event in subscription order.
func (e *Engine) Subscribe(s Sink) func() {
	e.sinkMu.Lock()
	id := e.nextID
	e.nextID++
	e.sinks = append(e.sinks, subscription{id: id, sink: s})
	e.sinkMu.Unlock()

	return func() {
		e.sinkMu.Lock()
		e.sinks = slices.DeleteFunc(e.sinks, func(sub subscription) bool { return sub.id == id })
		e.sinkMu.Unlock()
	}
}

// Duration returns the configured session length in seconds.
func (e *Engine) Duration() int { return e.cfg.Duration }

// Start selects a module and enters Active from any state.
func (e *Engine) Start(ctx context.Context, moduleID string) error {
	m, err := e.catalog.Get(moduleID)
	if err != nil {
		return fmt.Errorf("start %q: %w", moduleID, err)
	}
	if m == nil || len(m.Questions) == 0 {
		return fmt.Errorf("start %q: %w", moduleID, ErrModuleNotFound)
	}

	e.mu.Lock()
	e.queueLocked(e.beginLocked(ctx, m, model.SignalSessionStarted))
	e.mu.Unlock()

	e.log.Info().Str("module_id", m.ID).Int("duration", e.cfg.Duration).Msg("Session started")
	e.flush()
	return nil
}

// RecordAnswer stores the selected option for a question, replacing any
// previous selection. Unknown questions and options outside [0,3] are ignored.
func (e *Engine) RecordAnswer(ctx context.Context, questionID string, option int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.activeLocked("record answer")
	if !ok {
		return
	}
	if !e.module.HasQuestion(questionID) || option < 0 || option >= model.OptionCount {
		e.log.Debug().Str("question_id", questionID).Int("option", option).Msg("Ignoring invalid answer")
		return
	}

	a.Answers[questionID] = option
	e.saveCheckpointLocked(ctx, a)
}

// ToggleFlag marks or unmarks a question for review.
func (e *Engine) ToggleFlag(ctx context.Context, questionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.activeLocked("toggle flag")
	if !ok {
		return
	}
	if !e.module.HasQuestion(questionID) {
		return
	}

	if _, flagged := a.Flagged[questionID]; flagged {
		delete(a.Flagged, questionID)
	} else {
		a.Flagged[questionID] = struct{}{}
	}
	e.saveCheckpointLocked(ctx, a)
}

// Navigate moves to a question. The index is clamped into range.
func (e *Engine) Navigate(ctx context.Context, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.activeLocked("navigate")
	if !ok {
		return
	}

	a.CurrentIndex = clamp(index, 0, len(e.module.Questions)-1)
	e.saveCheckpointLocked(ctx, a)
}

// Tick consumes one second. Reaching zero finalizes the session.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	e.queueLocked(e.tickLocked(ctx))
	e.mu.Unlock()

	e.flush()
}

// Submit finalizes the session manually. Calling it again, or after the timer
// has already finalized, does nothing.
func (e *Engine) Submit(ctx context.Context) {
	e.mu.Lock()
	e.queueLocked(e.finalizeLocked(ctx, "manual"))
	e.mu.Unlock()

	e.flush()
}

// Reset discards the current attempt, including its checkpoint, and starts the
// same module again at full duration.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	if e.module == nil {
		e.mu.Unlock()
		e.log.Debug().Err(ErrNoActiveSession).Msg("Reset ignored")
		return
	}

	e.stopTimerLocked()
	e.clearCheckpointLocked(ctx)
	e.queueLocked(e.beginLocked(ctx, e.module, model.SignalSessionStarted))
	moduleID := e.module.ID
	e.mu.Unlock()

	e.log.Info().Str("module_id", moduleID).Msg("Session reset")
	e.flush()
}

// ExitToCatalog leaves Active or Submitted without finalizing. An in-progress
// checkpoint is kept for later recovery.
func (e *Engine) ExitToCatalog(ctx context.Context) {
	e.mu.Lock()
	if _, none := e.state.(NoSession); none {
		e.mu.Unlock()
		return
	}

	e.stopTimerLocked()
	e.monitor.Detach()
	e.state = NoSession{}
	e.module = nil
	e.speed.Reset()
	e.queueLocked([]Event{e.eventLocked(EventState)})
	e.mu.Unlock()

	e.log.Info().Msg("Exited to catalog")
	e.flush()
}

// ReportSignal feeds an environment signal to the proctoring monitor. It
// returns false when no session is active.
func (e *Engine) ReportSignal(ctx context.Context, signal model.Signal, detail string) (proctor.Observation, bool) {
	e.mu.Lock()
	if _, ok := e.state.(*Active); !ok {
		e.mu.Unlock()
		return proctor.Observation{}, false
	}

	obs, ok := e.monitor.Observe(signal, detail)
	if !ok {
		e.mu.Unlock()
		return proctor.Observation{}, false
	}

	entry := obs.Entry
	ev := e.eventLocked(EventProctor)
	ev.Entry = &entry
	events := []Event{ev}
	if obs.Alert != nil {
		alert := *obs.Alert
		ev := e.eventLocked(EventAlert)
		ev.Alert = &alert
		events = append(events, ev)
	}
	moduleID := e.module.ID
	e.queueLocked(events)
	e.mu.Unlock()

	if obs.Verdict.Severity != model.SeverityInfo {
		e.log.Warn().
			Str("module_id", moduleID).
			Str("signal", string(signal)).
			Str("severity", string(obs.Verdict.Severity)).
			Msg("Proctoring signal")
	}
	e.flush()
	return obs, true
}

// State returns a deep copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch s := e.state.(type) {
	case *Active:
		c := s.clone()
		c.ProctorLog = e.monitor.Entries()
		return c
	case *Submitted:
		return s.clone()
	default:
		return NoSession{}
	}
}

// Status reports the current state tag.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Status()
}

// History lists every archived attempt, oldest first.
func (e *Engine) History(ctx context.Context) ([]model.HistoryRecord, error) {
	return e.store.ListHistory(ctx)
}

// Close stops the ticker without touching state or the checkpoint.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTimerLocked()
	e.mu.Unlock()
}

// ─── Locked helpers ──────────────────────────────────────────────────────────

func (e *Engine) beginLocked(ctx context.Context, m *model.Module, seed model.Signal) []Event {
	e.stopTimerLocked()
	e.monitor.Attach(seed)
	e.speed.Reset()
	e.module = m

	a := &Active{
		ModuleID:         m.ID,
		Answers:          make(map[string]int),
		Flagged:          make(map[string]struct{}),
		RemainingSeconds: e.cfg.Duration,
	}
	e.state = a
	e.saveCheckpointLocked(ctx, a)
	e.startTimerLocked()

	return []Event{e.eventLocked(EventState)}
}

func (e *Engine) activeLocked(op string) (*Active, bool) {
	a, ok := e.state.(*Active)
	if !ok {
		e.log.Debug().Err(ErrNoActiveSession).Str("op", op).Msg("Mutation ignored")
	}
	return a, ok
}

func (e *Engine) tickLocked(ctx context.Context) []Event {
	a, ok := e.state.(*Active)
	if !ok {
		return nil
	}

	if a.RemainingSeconds > 0 {
		a.RemainingSeconds--
	}
	e.speed.Observe(e.cfg.Duration-a.RemainingSeconds, len(a.Answers))

	if a.RemainingSeconds == 0 {
		tick := e.eventLocked(EventTick)
		return append([]Event{tick}, e.finalizeLocked(ctx, "timeout")...)
	}

	e.saveCheckpointLocked(ctx, a)
	return []Event{e.eventLocked(EventTick)}
}

func (e *Engine) eventLocked(t EventType) Event {
	ev := Event{Type: t, Status: e.state.Status(), At: e.cfg.Now()}
	if e.module != nil {
		ev.ModuleID = e.module.ID
	}
	switch s := e.state.(type) {
	case *Active:
		ev.RemainingSeconds = s.RemainingSeconds
	case *Submitted:
		ev.RemainingSeconds = s.RemainingSeconds
	}
	return ev
}

// queueLocked stamps events with sequence numbers and appends them to the
// delivery queue in transition order.
func (e *Engine) queueLocked(events []Event) {
	for i := range events {
		e.seq++
		events[i].Seq = e.seq
	}
	e.pending = append(e.pending, events...)
}

// flush delivers every queued event. The caller holding emitMu drains the
// queue, including events queued by other goroutines meanwhile, so delivery
// follows seq order and has finished for the caller's own events on return.
// Sinks must not call engine mutations from Publish.
func (e *Engine) flush() {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	for {
		e.mu.Lock()
		events := e.pending
		e.pending = nil
		e.mu.Unlock()

		if len(events) == 0 {
			return
		}

		e.sinkMu.RLock()
		subs := slices.Clone(e.sinks)
		e.sinkMu.RUnlock()

		for _, ev := range events {
			for _, sub := range subs {
				sub.sink.Publish(ev)
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
