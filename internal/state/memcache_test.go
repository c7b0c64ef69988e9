package state

import (
	"errors"
	"sync"

	"github.com/brk3/habitcal/internal/storage"
	"github.com/brk3/habitcal/pkg/habit"
)

// memCache is an in-memory storage.Cache that counts saves.
type memCache struct {
	mu    sync.Mutex
	snap  *habit.Snapshot
	saves int
	err   error
}

func (m *memCache) Load() (habit.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return habit.Snapshot{}, false, m.err
	}
	if m.snap == nil {
		return habit.Snapshot{}, false, nil
	}
	return habit.Snapshot{
		Habits: append([]habit.Habit{}, m.snap.Habits...),
		Logs:   append([]habit.Log{}, m.snap.Logs...),
	}, true, nil
}

func (m *memCache) Save(snap habit.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.snap = &snap
	return nil
}

func (m *memCache) Close() error { return nil }

var errCacheBroken = errors.New("cache broken")

var _ storage.Cache = (*memCache)(nil)
