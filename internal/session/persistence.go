package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-prep/internal/model"
)

func (e *Engine) checkpointOf(a *Active) model.Checkpoint {
	return model.Checkpoint{
		ActiveModuleID:       a.ModuleID,
		Answers:              cloneAnswers(a.Answers),
		RemainingSeconds:     a.RemainingSeconds,
		Flagged:              sortedFlags(a.Flagged),
		CurrentQuestionIndex: a.CurrentIndex,
	}
}

// saveCheckpointLocked overwrites the checkpoint slot. Failures are logged and
// never fail the transition.
func (e *Engine) saveCheckpointLocked(ctx context.Context, a *Active) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	if err := e.store.SaveCheckpoint(ctx, e.checkpointOf(a)); err != nil {
		e.log.Error().Err(err).Str("module_id", a.ModuleID).Msg("Checkpoint write failed")
	}
}

func (e *Engine) clearCheckpointLocked(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	if err := e.store.ClearCheckpoint(ctx); err != nil {
		e.log.Error().Err(err).Msg("Checkpoint clear failed")
	}
}

// Recover restores an Active session from the checkpoint slot when no session
// is in memory. It reports whether a session was restored. Any problem with
// the checkpoint is treated as absence.
func (e *Engine) Recover(ctx context.Context) bool {
	e.mu.Lock()
	restored, events, err := e.recoverLocked(ctx)
	e.queueLocked(events)
	e.mu.Unlock()

	if err != nil {
		e.log.Warn().Err(err).Msg("Starting without a recovered session")
		return false
	}
	if restored {
		e.log.Info().Str("module_id", events[0].ModuleID).Int("remaining", events[0].RemainingSeconds).Msg("Session recovered")
	}
	e.flush()
	return restored
}

// Resume reloads the checkpoint kept by ExitToCatalog. It returns
// ErrSessionInProgress when a session is already loaded and ErrNoCheckpoint
// when the slot is empty or unusable. A checkpoint whose time has run out is
// finalized on the spot.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	if _, none := e.state.(NoSession); !none {
		e.mu.Unlock()
		return ErrSessionInProgress
	}
	restored, events, err := e.recoverLocked(ctx)
	e.queueLocked(events)
	e.mu.Unlock()

	if err != nil {
		e.log.Warn().Err(err).Msg("Resume failed")
		return fmt.Errorf("%w: %w", ErrNoCheckpoint, err)
	}
	if !restored {
		return ErrNoCheckpoint
	}

	e.log.Info().Str("module_id", events[0].ModuleID).Int("remaining", events[0].RemainingSeconds).Msg("Session resumed")
	e.flush()
	return nil
}

func (e *Engine) recoverLocked(ctx context.Context) (bool, []Event, error) {
	if _, none := e.state.(NoSession); !none {
		return false, nil, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	cp, err := e.store.LoadCheckpoint(loadCtx)
	cancel()
	if err != nil {
		if errors.Is(err, ErrMalformedCheckpoint) {
			e.clearCheckpointLocked(ctx)
		}
		return false, nil, &RecoveryError{Reason: "load checkpoint", Err: err}
	}
	if cp == nil {
		return false, nil, nil
	}

	m, err := e.catalog.Get(cp.ActiveModuleID)
	if err != nil || m == nil || len(m.Questions) == 0 {
		e.clearCheckpointLocked(ctx)
		return false, nil, &RecoveryError{Reason: "unknown module " + cp.ActiveModuleID, Err: err}
	}
	if cp.RemainingSeconds < 0 {
		e.clearCheckpointLocked(ctx)
		return false, nil, &RecoveryError{Reason: "negative remaining time"}
	}

	a := &Active{
		ModuleID:         m.ID,
		CurrentIndex:     clamp(cp.CurrentQuestionIndex, 0, len(m.Questions)-1),
		Answers:          make(map[string]int, len(cp.Answers)),
		Flagged:          make(map[string]struct{}, len(cp.Flagged)),
		RemainingSeconds: min(cp.RemainingSeconds, e.cfg.Duration),
	}
	for qid, opt := range cp.Answers {
		if m.HasQuestion(qid) && opt >= 0 && opt < model.OptionCount {
			a.Answers[qid] = opt
		}
	}
	for _, qid := range cp.Flagged {
		if m.HasQuestion(qid) {
			a.Flagged[qid] = struct{}{}
		}
	}

	e.module = m
	e.state = a
	e.speed.Reset()
	e.monitor.Attach(model.SignalSessionResumed)

	events := []Event{e.eventLocked(EventState)}
	if a.RemainingSeconds == 0 {
		// The time ran out while the page was gone.
		return true, append(events, e.finalizeLocked(ctx, "timeout")...), nil
	}
	e.startTimerLocked()
	return true, events, nil
}
