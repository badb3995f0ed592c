package websocket

import (
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/proctor"
	"github.com/stemsi/exstem-prep/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionFlag     Action = "flag"
	ActionNavigate Action = "navigate"
	ActionSignal   Action = "signal"
	ActionSubmit   Action = "submit"
	ActionResume   Action = "resume"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
// The remaining fields of a frame decode into the matching model request:
// answer → model.RecordAnswerRequest, flag → model.ToggleFlagRequest,
// navigate → model.NavigateRequest, signal → model.ReportSignalRequest.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick      Event = "tick"
	EventAlert     Event = "alert"
	EventState     Event = "state"
	EventProctor   Event = "proctor"
	EventSubmitted Event = "submitted"
	EventVerdict   Event = "verdict"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

type AlertResponse struct {
	Event Event       `json:"event"`
	Alert model.Alert `json:"alert"`
}

type StateResponse struct {
	Event Event        `json:"event"`
	State session.View `json:"state"`
}

type ProctorResponse struct {
	Event Event              `json:"event"`
	Entry model.ProctorEntry `json:"entry"`
}

type SubmittedResponse struct {
	Event  Event           `json:"event"`
	Result *session.Result `json:"result"`
}

// VerdictResponse answers a signal action. Cancel tells the client to
// suppress the default action (context menu, clipboard, devtools).
type VerdictResponse struct {
	Event   Event              `json:"event"`
	Signal  model.Signal       `json:"signal"`
	Verdict proctor.Verdict    `json:"verdict"`
	Entry   model.ProctorEntry `json:"entry"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
