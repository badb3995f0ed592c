package proctor

import "github.com/stemsi/exstem-prep/internal/model"

// LogCapacity is the number of entries kept in the proctor log.
const LogCapacity = 10

// Log is a bounded, ordered sequence of entries. When full, the oldest entry
// is evicted first.
type Log struct {
	entries  []model.ProctorEntry
	capacity int
}

// NewLog creates a Log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = LogCapacity
	}
	return &Log{
		entries:  make([]model.ProctorEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, evicting the oldest one if the log is full.
func (l *Log) Append(e model.ProctorEntry) {
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// Len returns the number of entries held.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []model.ProctorEntry {
	out := make([]model.ProctorEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
