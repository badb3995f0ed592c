package proctor

import (
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/exstem-prep/internal/model"
)

// DefaultAlertTTL is how long a raised alert stays visible.
const DefaultAlertTTL = 4 * time.Second

// Observation is the result of feeding one signal to an attached Monitor.
type Observation struct {
	Entry   model.ProctorEntry `json:"entry"`
	Verdict Verdict            `json:"verdict"`
	Alert   *model.Alert       `json:"alert,omitempty"`
}

// Monitor records signals into a bounded log while a session is active.
// It is not safe for concurrent use; the session engine serializes access.
type Monitor struct {
	log      *Log
	attached bool
	alert    *model.Alert
	alertTTL time.Duration
	now      func() time.Time
}

// NewMonitor creates a detached Monitor.
func NewMonitor(alertTTL time.Duration, now func() time.Time) *Monitor {
	if alertTTL <= 0 {
		alertTTL = DefaultAlertTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		log:      NewLog(LogCapacity),
		alertTTL: alertTTL,
		now:      now,
	}
}

// Attach starts a fresh log seeded with one info entry for the given signal.
func (m *Monitor) Attach(seed model.Signal) {
	m.log = NewLog(LogCapacity)
	m.alert = nil
	m.attached = true
	m.log.Append(m.entry(seed, "", model.SeverityInfo))
}

// Detach stops the monitor. Signals observed afterwards are dropped.
// The log is left intact so a finalized session can keep it.
func (m *Monitor) Detach() {
	m.attached = false
	m.alert = nil
}

// Attached reports whether signals are currently accepted.
func (m *Monitor) Attached() bool { return m.attached }

// Observe classifies a signal, logs it and raises an alert when required.
// It returns false when the monitor is detached.
func (m *Monitor) Observe(signal model.Signal, detail string) (Observation, bool) {
	if !m.attached {
		return Observation{}, false
	}

	v := Classify(signal)
	e := m.entry(signal, detail, v.Severity)
	m.log.Append(e)

	obs := Observation{Entry: e, Verdict: v}
	if v.Alert {
		a := model.Alert{
			Severity:  v.Severity,
			Message:   e.Message,
			RaisedAt:  e.Timestamp,
			ExpiresAt: e.Timestamp.Add(m.alertTTL),
		}
		m.alert = &a
		obs.Alert = &a
	}
	return obs, true
}

// ActiveAlert returns the current alert, or nil once it has expired.
func (m *Monitor) ActiveAlert() *model.Alert {
	if m.alert == nil || !m.now().Before(m.alert.ExpiresAt) {
		return nil
	}
	a := *m.alert
	return &a
}

// Entries returns a copy of the log.
func (m *Monitor) Entries() []model.ProctorEntry {
	return m.log.Entries()
}

func (m *Monitor) entry(signal model.Signal, detail string, sev model.Severity) model.ProctorEntry {
	ts := m.now()
	msg := Describe(signal, detail)
	return model.ProctorEntry{
		Signal:    signal,
		Severity:  sev,
		Message:   msg,
		Line:      fmt.Sprintf("[%s] %s: %s", ts.Format("15:04:05"), strings.ToUpper(string(sev)), msg),
		Timestamp: ts,
	}
}
