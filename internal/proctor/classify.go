// Package proctor classifies environment signals observed during an assessment.
//
// It is a best-effort deterrent, not a security boundary: everything it sees is
// reported by the candidate's own client, and it cannot detect out-of-band
// circumvention such as a second device.
package proctor

import (
	"fmt"

	"github.com/stemsi/exstem-prep/internal/model"
)

// Verdict is the outcome of classifying one signal.
type Verdict struct {
	Severity model.Severity `json:"severity"`
	// Cancel asks the client to suppress the default action.
	Cancel bool `json:"cancel"`
	// Alert means a user-visible alert must be raised.
	Alert bool `json:"alert"`
}

// Classify maps a raw signal to its severity and side effects.
func Classify(signal model.Signal) Verdict {
	switch signal {
	case model.SignalFocusLost:
		return Verdict{Severity: model.SeverityViolation, Alert: true}
	case model.SignalContextMenu:
		return Verdict{Severity: model.SeverityWarning, Cancel: true, Alert: true}
	case model.SignalCopy, model.SignalCut, model.SignalPaste:
		return Verdict{Severity: model.SeverityViolation, Cancel: true, Alert: true}
	case model.SignalDevTools:
		return Verdict{Severity: model.SeverityViolation, Cancel: true, Alert: true}
	default:
		return Verdict{Severity: model.SeverityInfo}
	}
}

// Describe returns the human-readable message for a signal.
func Describe(signal model.Signal, detail string) string {
	var msg string
	switch signal {
	case model.SignalFocusLost:
		msg = "Assessment window lost focus"
	case model.SignalFocusRegained:
		msg = "Assessment window focused"
	case model.SignalContextMenu:
		msg = "Context menu blocked"
	case model.SignalCopy, model.SignalCut, model.SignalPaste:
		msg = fmt.Sprintf("Clipboard %s blocked", signal)
	case model.SignalDevTools:
		msg = "Developer tools shortcut blocked"
	case model.SignalSessionStarted:
		msg = "Proctoring started"
	case model.SignalSessionResumed:
		msg = "Session resumed after reload"
	default:
		msg = fmt.Sprintf("Unrecognised signal %q", string(signal))
	}
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return msg
}
