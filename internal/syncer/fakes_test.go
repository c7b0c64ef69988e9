package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/brk3/habitcal/internal/state"
	"github.com/brk3/habitcal/pkg/habit"
)

var errOffline = errors.New("offline")

// fakeRemote records every call. With apply set, writes are folded into the
// snapshot it serves, assigning ids the way the spreadsheet does for
// id-less habits.
type fakeRemote struct {
	mu      sync.Mutex
	snap    habit.Snapshot
	apply   bool
	getErr  error
	putErr  error
	added   []habit.Habit
	batches [][]habit.Habit
	logged  []habit.Log
	gets    int
	nextID  int

	// getGate and putGate, when set, hold the call until they are closed.
	// getEntered receives once per GetData call before the gate.
	getGate    chan struct{}
	putGate    chan struct{}
	getEntered chan struct{}
}

func (f *fakeRemote) GetData(ctx context.Context) (habit.Snapshot, error) {
	if f.getEntered != nil {
		f.getEntered <- struct{}{}
	}
	if f.getGate != nil {
		<-f.getGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return habit.Snapshot{}, f.getErr
	}
	return habit.Snapshot{
		Habits: append([]habit.Habit{}, f.snap.Habits...),
		Logs:   append([]habit.Log{}, f.snap.Logs...),
	}, nil
}

func (f *fakeRemote) AddHabit(ctx context.Context, h habit.Habit) error {
	return f.write(func() {
		f.added = append(f.added, h)
		f.store(h)
	})
}

func (f *fakeRemote) BatchAdd(ctx context.Context, habits []habit.Habit) error {
	return f.write(func() {
		f.batches = append(f.batches, habits)
		for _, h := range habits {
			f.store(h)
		}
	})
}

func (f *fakeRemote) LogHabit(ctx context.Context, l habit.Log) error {
	return f.write(func() {
		f.logged = append(f.logged, l)
		if f.apply {
			f.snap.Logs = append(f.snap.Logs, l)
		}
	})
}

func (f *fakeRemote) write(record func()) error {
	if f.putGate != nil {
		<-f.putGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record()
	return f.putErr
}

// store must be called with f.mu held.
func (f *fakeRemote) store(h habit.Habit) {
	if !f.apply || f.putErr != nil {
		return
	}
	if h.ID == "" {
		f.nextID++
		h.ID = fmt.Sprintf("srv-%d", f.nextID)
	}
	f.snap.Habits = append(f.snap.Habits, h)
}

type fakeCache struct {
	mu    sync.Mutex
	snap  *habit.Snapshot
	saves int
}

func (c *fakeCache) Load() (habit.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return habit.Snapshot{}, false, nil
	}
	return *c.snap, true, nil
}

func (c *fakeCache) Save(snap habit.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	c.snap = &snap
	return nil
}

func (c *fakeCache) Close() error { return nil }

func (c *fakeCache) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

type renderCounter struct {
	n atomic.Int32
}

func (r *renderCounter) Render() { r.n.Add(1) }

func (r *renderCounter) count() int { return int(r.n.Load()) }

func newTestEngine(remote *fakeRemote, mode Mode) (*Engine, *state.Store, *fakeCache, *renderCounter) {
	cache := &fakeCache{}
	store := state.New(cache)
	r := &renderCounter{}
	n := 0
	e := New(store, remote, r, Options{
		Mode: mode,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	return e, store, cache, r
}
