package worker

import "time"

// historyPayload is one finalized attempt on persist_history_queue.
type historyPayload struct {
	RecordID        string    `json:"record_id"`
	ModuleID        string    `json:"module_id"`
	Module          string    `json:"module"`
	Score           int       `json:"score"`
	Total           int       `json:"total"`
	DurationSeconds int       `json:"duration_seconds"`
	FinishedAt      time.Time `json:"finished_at"`
}

// proctorPayload is one classified proctoring entry on persist_proctor_queue.
type proctorPayload struct {
	ModuleID   string    `json:"module_id"`
	Signal     string    `json:"signal"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)
