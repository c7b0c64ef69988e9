// Package state holds the working set of habits and completion logs for one
// session, mirrored into a durable cache so the UI can render before the
// remote store has answered.
package state

import (
	"fmt"
	"sync"

	"github.com/brk3/habitcal/internal/storage"
	"github.com/brk3/habitcal/pkg/habit"
)

// Store is the in-memory projection of the remote store. It is created once
// per session and shared by reference with the sync engine and renderers.
// A nil cache makes Restore and Persist no-ops.
type Store struct {
	mu     sync.RWMutex
	habits []habit.Habit
	logs   []habit.Log
	cache  storage.Cache
}

func New(cache storage.Cache) *Store {
	return &Store{
		habits: []habit.Habit{},
		logs:   []habit.Log{},
		cache:  cache,
	}
}

// Restore loads the cached snapshot, if any. An empty cache leaves the store
// empty and is not an error.
func (s *Store) Restore() error {
	if s.cache == nil {
		return nil
	}
	snap, found, err := s.cache.Load()
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if !found {
		return nil
	}
	s.Replace(snap.Habits, snap.Logs)
	return nil
}

// Persist overwrites the cached snapshot with the current state.
func (s *Store) Persist() error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Save(s.Snapshot()); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// Replace overwrites both collections wholesale.
func (s *Store) Replace(habits []habit.Habit, logs []habit.Log) {
	h := append([]habit.Habit{}, habits...)
	l := append([]habit.Log{}, logs...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = h
	s.logs = l
}

func (s *Store) AppendHabit(h ...habit.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append(s.habits, h...)
}

func (s *Store) AppendLog(l habit.Log) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, l)
}

// AppendLogIfAbsent appends l unless the habit already has a log on that
// date, and reports whether it appended. The check and the append happen
// under one lock.
func (s *Store) AppendLogIfAbsent(l habit.Log) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isDoneLocked(l.HabitID, l.Date) {
		return false
	}
	s.logs = append(s.logs, l)
	return true
}

// Snapshot returns a copy of both collections.
func (s *Store) Snapshot() habit.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return habit.Snapshot{
		Habits: append([]habit.Habit{}, s.habits...),
		Logs:   append([]habit.Log{}, s.logs...),
	}
}

func (s *Store) Habits() []habit.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]habit.Habit{}, s.habits...)
}

func (s *Store) Logs() []habit.Log {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]habit.Log{}, s.logs...)
}

func (s *Store) Habit(id string) (habit.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return habit.Habit{}, false
}
