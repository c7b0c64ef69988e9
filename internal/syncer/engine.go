// Package syncer keeps the local state store in step with the remote store.
//
// Local actions mutate the store, persist it and re-render before the
// matching remote call is sent; the call runs on its own goroutine and its
// outcome never rolls local state back. Snapshots replace local state
// wholesale, so a snapshot requested before a local mutation and answered
// after it silently drops that mutation until the next refresh.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brk3/habitcal/internal/apiclient"
	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/internal/state"
	"github.com/brk3/habitcal/pkg/habit"
	"github.com/google/uuid"
)

// MaxSeriesCount caps how many habits one series creates.
const MaxSeriesCount = 366

var (
	ErrNameRequired  = errors.New("name is required")
	ErrDateRequired  = errors.New("date is required")
	ErrCountRequired = errors.New("count must be at least 1")
	ErrCountTooLarge = fmt.Errorf("count must be at most %d", MaxSeriesCount)
	ErrHabitRequired = errors.New("habit id is required")
	ErrFrequency     = errors.New("unknown frequency")
)

type Remote interface {
	GetData(ctx context.Context) (habit.Snapshot, error)
	AddHabit(ctx context.Context, h habit.Habit) error
	BatchAdd(ctx context.Context, habits []habit.Habit) error
	LogHabit(ctx context.Context, l habit.Log) error
}

var _ Remote = (*apiclient.Client)(nil)

// Renderer is notified after every change to local state. Render may be
// called from any goroutine.
type Renderer interface {
	Render()
}

type RenderFunc func()

func (f RenderFunc) Render() { f() }

type Mode string

const (
	// ModeCacheFirst restores from the durable cache, assigns ids locally and
	// applies creates optimistically.
	ModeCacheFirst Mode = "cache-first"
	// ModeNetworkOnly lets the remote store assign ids; creates show up after
	// the refresh that follows them.
	ModeNetworkOnly Mode = "network-only"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCacheFirst:
		return ModeCacheFirst, nil
	case ModeNetworkOnly:
		return ModeNetworkOnly, nil
	}
	return "", fmt.Errorf("unknown sync mode %q", s)
}

type Options struct {
	Mode          Mode
	MissThreshold int
	NewID         func() string
}

type Engine struct {
	store  *state.Store
	remote Remote
	ledger *Ledger
	mode   Mode
	newID  func() string
	now    func() time.Time

	mu       sync.RWMutex
	renderer Renderer

	wg sync.WaitGroup
}

// New wires an engine to store and remote. renderer may be nil and set
// later with SetRenderer.
func New(store *state.Store, remote Remote, renderer Renderer, opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = ModeCacheFirst
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{
		store:    store,
		remote:   remote,
		ledger:   NewLedger(opts.MissThreshold),
		mode:     opts.Mode,
		newID:    opts.NewID,
		now:      time.Now,
		renderer: renderer,
	}
}

func (e *Engine) SetRenderer(r Renderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderer = r
}

func (e *Engine) Store() *state.Store { return e.store }

func (e *Engine) Mode() Mode { return e.mode }

func (e *Engine) render() {
	e.mu.RLock()
	r := e.renderer
	e.mu.RUnlock()
	if r != nil {
		r.Render()
	}
}

func (e *Engine) persist() {
	if e.mode == ModeNetworkOnly {
		return
	}
	if err := e.store.Persist(); err != nil {
		logger.Warn("Failed to persist local state", "error", err)
	}
}

func (e *Engine) spawn(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// Start restores cached state, renders it, then fetches a snapshot in the
// background.
func (e *Engine) Start() {
	if e.mode == ModeCacheFirst {
		if err := e.store.Restore(); err != nil {
			logger.Warn("Failed to restore cached state", "error", err)
		}
	}
	e.render()
	e.Refresh()
}

func (e *Engine) Refresh() {
	e.spawn(func() {
		_ = e.FetchSnapshot(context.Background())
	})
}

// FetchSnapshot replaces local state with the remote snapshot. On failure the
// error is logged and returned and local state is left as it was.
func (e *Engine) FetchSnapshot(ctx context.Context) error {
	issuedAt := e.now()
	start := time.Now()
	snap, err := e.remote.GetData(ctx)
	observeRequest(apiclient.ActionGetData, start, err)
	if err != nil {
		snapshotFetches.WithLabelValues("error").Inc()
		logger.Warn("Snapshot fetch failed", "error", err)
		return err
	}
	snapshotFetches.WithLabelValues("ok").Inc()

	e.store.Replace(snap.Habits, snap.Logs)
	e.persist()
	e.ledger.Reconcile(snap, issuedAt)
	observeLedger(e.ledger.Counts())
	logger.Debug("Snapshot applied", "habits", len(snap.Habits), "logs", len(snap.Logs))
	e.render()
	return nil
}

// CreateHabit adds one habit. A daily habit never carries a target date; a
// specific one requires it. In network-only mode the returned habit has no
// id and is not added to local state.
func (e *Engine) CreateHabit(name string, freq habit.Frequency, target habit.Date) (habit.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return habit.Habit{}, ErrNameRequired
	}
	switch freq {
	case habit.Daily:
		target = habit.Date{}
	case habit.Specific:
		if target.IsZero() {
			return habit.Habit{}, ErrDateRequired
		}
	default:
		return habit.Habit{}, fmt.Errorf("%w: %q", ErrFrequency, freq)
	}

	h := habit.Habit{Name: name, Freq: freq, TargetDate: target}
	if e.mode == ModeCacheFirst {
		h.ID = e.newID()
		e.store.AppendHabit(h)
		e.persist()
	}
	id := e.track(KindHabit, []string{habitKey(h)})
	e.render()

	e.submit(id, apiclient.ActionAddHabit, func(ctx context.Context) error {
		return e.remote.AddHabit(ctx, h)
	})
	return h, nil
}

// CreateSeries adds count specific habits named "{prefix} {i}" on
// consecutive days starting at start, as a single batch.
func (e *Engine) CreateSeries(prefix string, start habit.Date, count int) ([]habit.Habit, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrNameRequired
	}
	if start.IsZero() {
		return nil, ErrDateRequired
	}
	if count <= 0 {
		return nil, ErrCountRequired
	}
	if count > MaxSeriesCount {
		return nil, ErrCountTooLarge
	}

	habits := make([]habit.Habit, 0, count)
	keys := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		h := habit.Habit{
			Name:       fmt.Sprintf("%s %d", prefix, i),
			Freq:       habit.Specific,
			TargetDate: start.AddDays(i - 1),
		}
		if e.mode == ModeCacheFirst {
			h.ID = e.newID()
		}
		habits = append(habits, h)
		keys = append(keys, habitKey(h))
	}

	if e.mode == ModeCacheFirst {
		e.store.AppendHabit(habits...)
		e.persist()
	}
	id := e.track(KindSeries, keys)
	e.render()

	e.submit(id, apiclient.ActionBatchAdd, func(ctx context.Context) error {
		return e.remote.BatchAdd(ctx, habits)
	})
	return habits, nil
}

// ToggleCompletion marks habitID done on date. It only ever adds a log: when
// alreadyDone is true nothing happens.
func (e *Engine) ToggleCompletion(habitID string, date habit.Date, alreadyDone bool) error {
	if alreadyDone {
		return nil
	}
	_, err := e.Complete(habitID, date)
	return err
}

// Complete logs habitID as done on date and reports whether it added a log.
// A pair the store already holds is left alone, so concurrent callers log it
// once.
func (e *Engine) Complete(habitID string, date habit.Date) (bool, error) {
	if habitID == "" {
		return false, ErrHabitRequired
	}
	if date.IsZero() {
		return false, ErrDateRequired
	}

	l := habit.Log{HabitID: habitID, Date: date}
	if !e.store.AppendLogIfAbsent(l) {
		return false, nil
	}
	e.persist()
	id := e.track(KindLog, []string{logKey(l)})
	e.render()

	e.submit(id, apiclient.ActionLogHabit, func(ctx context.Context) error {
		return e.remote.LogHabit(ctx, l)
	})
	return true, nil
}

func (e *Engine) track(kind WriteKind, keys []string) string {
	id := e.ledger.add(kind, keys, e.now())
	observeLedger(e.ledger.Counts())
	return id
}

// submit sends a write in the background. Network-only creates are followed
// by a refresh once the write succeeds; logs are already applied locally.
func (e *Engine) submit(writeID, action string, call func(ctx context.Context) error) {
	refresh := e.mode == ModeNetworkOnly && action != apiclient.ActionLogHabit
	e.spawn(func() {
		ctx := context.Background()
		start := time.Now()
		err := call(ctx)
		observeRequest(action, start, err)
		e.ledger.complete(writeID, err, e.now())
		observeLedger(e.ledger.Counts())

		if err != nil {
			logger.Warn("Remote write failed", "action", action, "write", writeID, "error", err)
			e.render()
			return
		}
		logger.Debug("Remote write accepted", "action", action, "write", writeID)
		if refresh {
			_ = e.FetchSnapshot(ctx)
			return
		}
		e.render()
	})
}

// Wait blocks until every background request started so far has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) Writes() []Write {
	return e.ledger.Writes()
}

func (e *Engine) WriteCounts() map[WriteStatus]int {
	return e.ledger.Counts()
}

// ClearFailedWrites forgets every failed write and returns how many there
// were. Local state is not touched.
func (e *Engine) ClearFailedWrites() int {
	n := e.ledger.ClearFailed()
	if n > 0 {
		observeLedger(e.ledger.Counts())
		e.render()
	}
	return n
}
