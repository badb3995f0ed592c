package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-prep/internal/model"
)

// Score counts questions whose recorded answer matches the correct option.
// Unanswered questions count as incorrect.
func Score(m *model.Module, answers map[string]int) int {
	score := 0
	for _, q := range m.Questions {
		if sel, ok := answers[q.ID]; ok && sel == q.CorrectOption {
			score++
		}
	}
	return score
}

// finalizeLocked is the terminal transition. The state type guards it, so the
// timer path and the manual path archive at most once between them.
func (e *Engine) finalizeLocked(ctx context.Context, reason string) []Event {
	a, ok := e.state.(*Active)
	if !ok {
		return nil
	}

	e.stopTimerLocked()
	e.monitor.Detach()

	now := e.cfg.Now()
	score := Score(e.module, a.Answers)
	rec := model.HistoryRecord{
		ID:       uuid.NewString(),
		ModuleID: e.module.ID,
		Module:   e.module.Title,
		Score:    score,
		Total:    len(e.module.Questions),
		Date:     now.UTC().Format(time.RFC3339),
	}

	histCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	if err := e.store.AppendHistory(histCtx, rec); err != nil {
		e.log.Error().Err(err).Str("module_id", rec.ModuleID).Msg("History append failed")
	}
	cancel()
	e.clearCheckpointLocked(ctx)

	e.state = &Submitted{
		ModuleID:         a.ModuleID,
		CurrentIndex:     a.CurrentIndex,
		Answers:          a.Answers,
		Flagged:          a.Flagged,
		RemainingSeconds: a.RemainingSeconds,
		ProctorLog:       e.monitor.Entries(),
		Speed:            e.speed.Speed(),
		Score:            score,
		Total:            rec.Total,
		FinalizedAt:      now,
		Record:           rec,
	}

	e.log.Info().
		Str("module_id", rec.ModuleID).
		Str("reason", reason).
		Int("score", score).
		Int("total", rec.Total).
		Msg("Session finalized")

	ev := e.eventLocked(EventSubmitted)
	ev.Record = &rec
	return []Event{ev}
}
