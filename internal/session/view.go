package session

import (
	"time"

	"github.com/stemsi/exstem-prep/internal/metrics"
	"github.com/stemsi/exstem-prep/internal/model"
)

// View is the read-only projection of the engine served to clients.
type View struct {
	Status           Status               `json:"status"`
	ModuleID         string               `json:"module_id,omitempty"`
	ModuleTitle      string               `json:"module_title,omitempty"`
	TotalQuestions   int                  `json:"total_questions"`
	CurrentIndex     int                  `json:"current_question_index"`
	Answers          map[string]int       `json:"answers"`
	Flagged          []string             `json:"flagged"`
	RemainingSeconds int                  `json:"remaining_seconds"`
	ProctorLog       []model.ProctorEntry `json:"proctor_log"`
	Alert            *model.Alert         `json:"alert,omitempty"`
	Performance      *metrics.Snapshot    `json:"performance,omitempty"`
	Result           *Result              `json:"result,omitempty"`
}

// Result is the outcome of a finalized attempt. Passed and Band are
// presentational and never influence the score.
type Result struct {
	Score       int                 `json:"score"`
	Total       int                 `json:"total"`
	Percent     float64             `json:"percent"`
	Band        metrics.Band        `json:"band"`
	Passed      bool                `json:"passed"`
	FinalizedAt time.Time           `json:"finalized_at"`
	Record      model.HistoryRecord `json:"record"`
	Review      []ReviewItem        `json:"review"`
}

// ReviewItem explains one question after submission.
type ReviewItem struct {
	QuestionID    string   `json:"question_id"`
	Selected      *int     `json:"selected"`
	CorrectOption int      `json:"correct_option"`
	IsCorrect     bool     `json:"is_correct"`
	Flagged       bool     `json:"flagged"`
	Explanation   string   `json:"explanation"`
	Tips          []string `json:"tips,omitempty"`
}

// Snapshot builds the current View.
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Status:     e.state.Status(),
		Answers:    map[string]int{},
		Flagged:    []string{},
		ProctorLog: []model.ProctorEntry{},
	}
	if e.module == nil {
		return v
	}
	v.ModuleID = e.module.ID
	v.ModuleTitle = e.module.Title
	v.TotalQuestions = len(e.module.Questions)

	switch s := e.state.(type) {
	case *Active:
		v.CurrentIndex = s.CurrentIndex
		v.Answers = cloneAnswers(s.Answers)
		v.Flagged = sortedFlags(s.Flagged)
		v.RemainingSeconds = s.RemainingSeconds
		v.ProctorLog = e.monitor.Entries()
		v.Alert = e.monitor.ActiveAlert()
		perf := metrics.Derive(e.module, s.Answers, e.speed.Speed())
		v.Performance = &perf
	case *Submitted:
		v.CurrentIndex = s.CurrentIndex
		v.Answers = cloneAnswers(s.Answers)
		v.Flagged = sortedFlags(s.Flagged)
		v.RemainingSeconds = s.RemainingSeconds
		v.ProctorLog = append([]model.ProctorEntry(nil), s.ProctorLog...)
		perf := metrics.Derive(e.module, s.Answers, s.Speed)
		v.Performance = &perf
		v.Result = e.resultLocked(s)
	}
	return v
}

// Performance derives the live analytics, or false when nothing is selected.
func (e *Engine) Performance() (metrics.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch s := e.state.(type) {
	case *Active:
		return metrics.Derive(e.module, s.Answers, e.speed.Speed()), true
	case *Submitted:
		return metrics.Derive(e.module, s.Answers, s.Speed), true
	default:
		return metrics.Snapshot{}, false
	}
}

func (e *Engine) resultLocked(s *Submitted) *Result {
	pct := metrics.Percent(s.Score, s.Total)
	r := &Result{
		Score:       s.Score,
		Total:       s.Total,
		Percent:     pct,
		Band:        metrics.BandFor(pct),
		Passed:      pct >= float64(e.module.PassingScore),
		FinalizedAt: s.FinalizedAt,
		Record:      s.Record,
		Review:      make([]ReviewItem, 0, len(e.module.Questions)),
	}

	for _, q := range e.module.Questions {
		item := ReviewItem{
			QuestionID:    q.ID,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			Tips:          q.Tips,
		}
		if sel, ok := s.Answers[q.ID]; ok {
			sel := sel
			item.Selected = &sel
			item.IsCorrect = sel == q.CorrectOption
		}
		_, item.Flagged = s.Flagged[q.ID]
		r.Review = append(r.Review, item)
	}
	return r
}
