package model

import "time"

// Signal is an environment event observed on the assessment surface.
type Signal string

const (
	SignalFocusLost      Signal = "focus_lost"
	SignalFocusRegained  Signal = "focus_regained"
	SignalContextMenu    Signal = "context_menu"
	SignalCopy           Signal = "copy"
	SignalCut            Signal = "cut"
	SignalPaste          Signal = "paste"
	SignalDevTools       Signal = "devtools"
	SignalSessionStarted Signal = "session_started"
	SignalSessionResumed Signal = "session_resumed"
)

// Severity classifies a proctoring signal.
type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityViolation Severity = "violation"
)

// ProctorEntry is one line of the bounded proctor log.
type ProctorEntry struct {
	Signal    Signal    `json:"signal"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is an ephemeral, user-visible notice raised by warnings and violations.
type Alert struct {
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	RaisedAt  time.Time `json:"raised_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReportSignalRequest is the payload for reporting an environment signal.
type ReportSignalRequest struct {
	Signal Signal `json:"signal" binding:"required,oneof=focus_lost focus_regained context_menu copy cut paste devtools"`
	Detail string `json:"detail" binding:"omitempty,max=200"`
}
