package syncer

import (
	"sync"
	"time"

	"github.com/brk3/habitcal/pkg/habit"
	"github.com/google/uuid"
)

type WriteKind string

const (
	KindHabit  WriteKind = "habit"
	KindSeries WriteKind = "series"
	KindLog    WriteKind = "log"
)

type WriteStatus string

const (
	StatusPending   WriteStatus = "pending"
	StatusConfirmed WriteStatus = "confirmed"
	StatusFailed    WriteStatus = "failed"
)

const DefaultMissThreshold = 3

// MaxFailedWrites bounds the failed writes a ledger keeps; the oldest are
// dropped first.
const MaxFailedWrites = 100

// Write is one optimistic mutation submitted to the remote store. Keys name
// the entities it created; it is confirmed once a snapshot contains all of
// them.
type Write struct {
	ID          string      `json:"id"`
	Kind        WriteKind   `json:"kind"`
	Keys        []string    `json:"keys"`
	Status      WriteStatus `json:"status"`
	Misses      int         `json:"misses"`
	LastError   string      `json:"last_error,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at"`
	CompletedAt time.Time   `json:"completed_at,omitzero"`
}

// Ledger tracks the session's optimistic writes. It never touches the
// state store: a failed write stays visible here and nowhere else.
type Ledger struct {
	mu        sync.Mutex
	writes    []*Write
	threshold int
	maxFailed int
}

func NewLedger(missThreshold int) *Ledger {
	if missThreshold <= 0 {
		missThreshold = DefaultMissThreshold
	}
	return &Ledger{threshold: missThreshold, maxFailed: MaxFailedWrites}
}

func habitKey(h habit.Habit) string {
	if h.ID == "" {
		return "habit:" + h.Name + "|" + h.TargetDate.String()
	}
	return "habit:" + h.ID
}

func logKey(l habit.Log) string {
	return "log:" + l.HabitID + "|" + l.Date.String()
}

func (l *Ledger) add(kind WriteKind, keys []string, at time.Time) string {
	w := &Write{
		ID:          uuid.NewString(),
		Kind:        kind,
		Keys:        keys,
		Status:      StatusPending,
		SubmittedAt: at,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes = append(l.writes, w)
	return w.ID
}

// complete records the outcome of the remote call. An error marks the write
// failed straight away; a later snapshot can still confirm it.
func (l *Ledger) complete(id string, err error, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.writes {
		if w.ID != id {
			continue
		}
		w.CompletedAt = at
		if err != nil {
			w.LastError = err.Error()
			w.Status = StatusFailed
			l.trimFailedLocked()
		}
		return
	}
}

// Reconcile checks outstanding writes against snap, which was requested at
// issuedAt. Writes confirmed by an earlier pass are dropped first.
func (l *Ledger) Reconcile(snap habit.Snapshot, issuedAt time.Time) {
	present := make(map[string]bool, 2*len(snap.Habits)+len(snap.Logs))
	for _, h := range snap.Habits {
		present[habitKey(h)] = true
		present[habitKey(habit.Habit{Name: h.Name, TargetDate: h.TargetDate})] = true
	}
	for _, lg := range snap.Logs {
		present[logKey(lg)] = true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.writes[:0]
	for _, w := range l.writes {
		if w.Status == StatusConfirmed {
			continue
		}
		kept = append(kept, w)

		if containsAll(present, w.Keys) {
			w.Status = StatusConfirmed
			continue
		}
		// Only a snapshot requested after the write landed can count against it.
		if w.Status != StatusPending || w.CompletedAt.IsZero() || !w.CompletedAt.Before(issuedAt) {
			continue
		}
		w.Misses++
		if w.Misses >= l.threshold {
			w.Status = StatusFailed
		}
	}
	for i := len(kept); i < len(l.writes); i++ {
		l.writes[i] = nil
	}
	l.writes = kept
	l.trimFailedLocked()
}

// ClearFailed drops every failed write and returns how many it dropped.
func (l *Ledger) ClearFailed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropFailedLocked(len(l.writes))
}

func (l *Ledger) trimFailedLocked() {
	failed := 0
	for _, w := range l.writes {
		if w.Status == StatusFailed {
			failed++
		}
	}
	if failed > l.maxFailed {
		l.dropFailedLocked(failed - l.maxFailed)
	}
}

// dropFailedLocked removes up to n failed writes, oldest first.
func (l *Ledger) dropFailedLocked(n int) int {
	dropped := 0
	kept := l.writes[:0]
	for _, w := range l.writes {
		if dropped < n && w.Status == StatusFailed {
			dropped++
			continue
		}
		kept = append(kept, w)
	}
	for i := len(kept); i < len(l.writes); i++ {
		l.writes[i] = nil
	}
	l.writes = kept
	return dropped
}

func containsAll(set map[string]bool, keys []string) bool {
	for _, k := range keys {
		if !set[k] {
			return false
		}
	}
	return true
}

// Writes returns copies of the tracked writes, oldest first.
func (l *Ledger) Writes() []Write {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Write, 0, len(l.writes))
	for _, w := range l.writes {
		c := *w
		c.Keys = append([]string(nil), w.Keys...)
		out = append(out, c)
	}
	return out
}

func (l *Ledger) Counts() map[WriteStatus]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := map[WriteStatus]int{}
	for _, w := range l.writes {
		counts[w.Status]++
	}
	return counts
}
