package storage

import "github.com/brk3/habitcal/pkg/habit"

// Names of the two cache entries.
const (
	HabitsKey = "habits"
	LogsKey   = "logs"
)

// Cache is the durable local mirror of the habit and log collections. Load
// reports found=false when nothing has been saved yet.
type Cache interface {
	Load() (snap habit.Snapshot, found bool, err error)
	Save(snap habit.Snapshot) error
	Close() error
}
