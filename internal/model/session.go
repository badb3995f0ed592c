package model

// Checkpoint is the durable snapshot of an active session used for reload recovery.
type Checkpoint struct {
	ActiveModuleID       string         `json:"active_module_id"`
	Answers              map[string]int `json:"answers"`
	RemainingSeconds     int            `json:"remaining_seconds"`
	Flagged              []string       `json:"flagged"`
	CurrentQuestionIndex int            `json:"current_question_index"`
}

// HistoryRecord is the immutable archive entry written once per finalized attempt.
type HistoryRecord struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Module   string `json:"module"`
	Score    int    `json:"score"`
	Total    int    `json:"total"`
	Date     string `json:"date"`
}

// StartSessionRequest is the payload for selecting a module.
type StartSessionRequest struct {
	ModuleID string `json:"module_id" binding:"required,max=64"`
}

// RecordAnswerRequest is the payload for answering a question.
type RecordAnswerRequest struct {
	QuestionID  string `json:"question_id" binding:"required,max=64"`
	OptionIndex *int   `json:"option_index" binding:"required,min=0,max=3"`
}

// ToggleFlagRequest is the payload for flagging a question for review.
type ToggleFlagRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
}

// NavigateRequest is the payload for moving to a question. Out-of-range indexes are clamped.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required"`
}

// HistoryQuery pages through the local attempt history.
type HistoryQuery struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// ArchiveQuery bounds the archive listing.
type ArchiveQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
