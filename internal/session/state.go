package session

import (
	"sort"
	"time"

	"github.com/stemsi/exstem-prep/internal/model"
)

// Status is the tag of the session state variant.
type Status string

const (
	StatusNoSession Status = "NO_SESSION"
	StatusActive    Status = "ACTIVE"
	StatusSubmitted Status = "SUBMITTED"
)

// State is the session lifecycle: exactly one of NoSession, Active or Submitted.
type State interface {
	Status() Status
	isState()
}

// NoSession means no module is selected.
type NoSession struct{}

// Active is an attempt in progress.
type Active struct {
	ModuleID         string
	CurrentIndex     int
	Answers          map[string]int
	Flagged          map[string]struct{}
	RemainingSeconds int
	// ProctorLog is filled from the monitor when the state is read.
	ProctorLog []model.ProctorEntry
}

// Submitted is a finalized attempt. Nothing in it changes after the transition.
type Submitted struct {
	ModuleID         string
	CurrentIndex     int
	Answers          map[string]int
	Flagged          map[string]struct{}
	RemainingSeconds int
	ProctorLog       []model.ProctorEntry
	Speed            float64
	Score            int
	Total            int
	FinalizedAt      time.Time
	Record           model.HistoryRecord
}

func (NoSession) Status() Status  { return StatusNoSession }
func (*Active) Status() Status    { return StatusActive }
func (*Submitted) Status() Status { return StatusSubmitted }

func (NoSession) isState()  {}
func (*Active) isState()    {}
func (*Submitted) isState() {}

func (a *Active) clone() *Active {
	c := *a
	c.Answers = cloneAnswers(a.Answers)
	c.Flagged = cloneFlags(a.Flagged)
	c.ProctorLog = append([]model.ProctorEntry(nil), a.ProctorLog...)
	return &c
}

func (s *Submitted) clone() *Submitted {
	c := *s
	c.Answers = cloneAnswers(s.Answers)
	c.Flagged = cloneFlags(s.Flagged)
	c.ProctorLog = append([]model.ProctorEntry(nil), s.ProctorLog...)
	return &c
}

func cloneAnswers(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFlags(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

// sortedFlags returns flagged ids in a stable order for persistence and views.
func sortedFlags(in map[string]struct{}) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
