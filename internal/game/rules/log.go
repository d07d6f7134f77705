package rules

import (
	"sync"
	"time"
)

// DefaultLogCap is the bound on retained log entries.
const DefaultLogCap = 200

// Entry is a structured record of one meaningful state change.
type Entry struct {
	Time    time.Time
	Type    string
	Message string
	Detail  map[string]any
}

// GameLog is an append-only, bounded sequence of entries. When the cap is
// reached the oldest entry is evicted.
type GameLog struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

// NewGameLog creates a log bounded to the given capacity (DefaultLogCap when
// zero or negative).
func NewGameLog(capacity int) *GameLog {
	if capacity <= 0 {
		capacity = DefaultLogCap
	}
	return &GameLog{cap: capacity}
}

// Append records an entry, stamping it if needed, and returns the stored copy.
func (l *GameLog) Append(e Entry) Entry {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) >= l.cap {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a snapshot of the retained entries, oldest first.
func (l *GameLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *GameLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
