package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/brk3/habitcal/pkg/habit"
)

func d(s string) habit.Date { return habit.MustParseDate(s) }

func TestStart_RendersCacheThenSnapshot(t *testing.T) {
	remote := &fakeRemote{snap: habit.Snapshot{
		Habits: []habit.Habit{{ID: "r1", Name: "remote", Freq: habit.Daily}},
		Logs:   []habit.Log{},
	}}
	e, store, cache, r := newTestEngine(remote, ModeCacheFirst)
	cache.snap = &habit.Snapshot{
		Habits: []habit.Habit{{ID: "c1", Name: "cached", Freq: habit.Daily}},
		Logs:   []habit.Log{},
	}

	remote.getGate = make(chan struct{})
	e.Start()

	if got := store.Habits(); len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("expected cached habit before the snapshot arrives, got %+v", got)
	}
	if r.count() != 1 {
		t.Fatalf("expected one render after restore, got %d", r.count())
	}

	close(remote.getGate)
	e.Wait()

	if got := store.Habits(); len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected snapshot to replace cached state, got %+v", got)
	}
	if r.count() != 2 {
		t.Errorf("expected a second render after the snapshot, got %d", r.count())
	}
	if cache.snap == nil || len(cache.snap.Habits) != 1 || cache.snap.Habits[0].ID != "r1" {
		t.Errorf("expected snapshot to be persisted, got %+v", cache.snap)
	}
}

func TestStart_NoCacheRendersEmpty(t *testing.T) {
	remote := &fakeRemote{getErr: errOffline}
	e, store, _, r := newTestEngine(remote, ModeCacheFirst)

	e.Start()
	e.Wait()

	if len(store.Habits()) != 0 || len(store.Logs()) != 0 {
		t.Fatalf("expected empty state, got %+v", store.Snapshot())
	}
	if r.count() != 1 {
		t.Errorf("expected exactly the initial render, got %d", r.count())
	}
	if view := store.Day(d("2024-01-31")); view.Percent != 0 || view.Total != 0 {
		t.Errorf("unexpected day view %+v", view)
	}
}

func TestFetchSnapshot_FailureLeavesState(t *testing.T) {
	remote := &fakeRemote{getErr: errOffline}
	e, store, cache, r := newTestEngine(remote, ModeCacheFirst)
	store.Replace([]habit.Habit{{ID: "a", Name: "read", Freq: habit.Daily}}, nil)

	err := e.FetchSnapshot(context.Background())
	if !errors.Is(err, errOffline) {
		t.Fatalf("expected offline error, got %v", err)
	}
	if got := store.Habits(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("state changed after a failed fetch: %+v", got)
	}
	if cache.saveCount() != 0 {
		t.Errorf("expected no persist, got %d saves", cache.saveCount())
	}
	if r.count() != 0 {
		t.Errorf("expected no render, got %d", r.count())
	}
}

func TestCreateHabit_Optimistic(t *testing.T) {
	remote := &fakeRemote{putGate: make(chan struct{})}
	e, store, cache, r := newTestEngine(remote, ModeCacheFirst)

	h, err := e.CreateHabit("  read  ", habit.Daily, habit.Date{})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if h.ID != "id-1" || h.Name != "read" {
		t.Fatalf("unexpected habit %+v", h)
	}

	// The remote call is still blocked; local state already has the habit.
	if _, ok := store.Habit("id-1"); !ok {
		t.Fatal("expected habit in local state before the remote call completes")
	}
	if cache.saveCount() != 1 || r.count() != 1 {
		t.Fatalf("expected one persist and one render, got %d and %d", cache.saveCount(), r.count())
	}

	close(remote.putGate)
	e.Wait()

	if len(remote.added) != 1 || remote.added[0].ID != "id-1" {
		t.Fatalf("expected ADD_HABIT carrying the local id, got %+v", remote.added)
	}
}

func TestCreateHabit_DailyDropsTargetDate(t *testing.T) {
	e, _, _, _ := newTestEngine(&fakeRemote{}, ModeCacheFirst)

	h, err := e.CreateHabit("stretch", habit.Daily, d("2024-01-31"))
	if err != nil {
		t.Fatal(err)
	}
	e.Wait()
	if !h.TargetDate.IsZero() {
		t.Errorf("expected daily habit without a target date, got %v", h.TargetDate)
	}
}

func TestCreateHabit_Validation(t *testing.T) {
	remote := &fakeRemote{}
	e, store, cache, r := newTestEngine(remote, ModeCacheFirst)

	tests := []struct {
		name   string
		freq   habit.Frequency
		target habit.Date
		want   error
	}{
		{"", habit.Daily, habit.Date{}, ErrNameRequired},
		{"   ", habit.Specific, d("2024-01-31"), ErrNameRequired},
		{"read", habit.Specific, habit.Date{}, ErrDateRequired},
		{"read", habit.Frequency("Weekly"), habit.Date{}, ErrFrequency},
	}
	for _, tt := range tests {
		if _, err := e.CreateHabit(tt.name, tt.freq, tt.target); !errors.Is(err, tt.want) {
			t.Errorf("CreateHabit(%q, %q) error = %v, want %v", tt.name, tt.freq, err, tt.want)
		}
	}
	e.Wait()

	if len(store.Habits()) != 0 || cache.saveCount() != 0 || r.count() != 0 {
		t.Error("validation failure mutated state")
	}
	if len(remote.added) != 0 {
		t.Errorf("validation failure reached the remote: %+v", remote.added)
	}
}

func TestCreateSeries_CrossesMonthBoundary(t *testing.T) {
	remote := &fakeRemote{}
	e, store, cache, _ := newTestEngine(remote, ModeCacheFirst)

	habits, err := e.CreateSeries("Class", d("2024-01-31"), 3)
	if err != nil {
		t.Fatalf("CreateSeries failed: %v", err)
	}
	e.Wait()

	want := []struct{ name, date string }{
		{"Class 1", "2024-01-31"},
		{"Class 2", "2024-02-01"},
		{"Class 3", "2024-02-02"},
	}
	if len(habits) != len(want) {
		t.Fatalf("expected %d habits, got %d", len(want), len(habits))
	}
	for i, w := range want {
		h := habits[i]
		if h.Name != w.name || h.TargetDate.String() != w.date || h.Freq != habit.Specific {
			t.Errorf("habit %d = %+v, want %s on %s", i, h, w.name, w.date)
		}
	}

	if len(store.Habits()) != 3 {
		t.Errorf("expected 3 habits in local state, got %d", len(store.Habits()))
	}
	if cache.saveCount() != 1 {
		t.Errorf("expected a single persist for the batch, got %d", cache.saveCount())
	}
	if len(remote.batches) != 1 || len(remote.batches[0]) != 3 {
		t.Errorf("expected one BATCH_ADD with 3 items, got %+v", remote.batches)
	}
	if !store.HasScheduled(d("2024-02-01")) {
		t.Error("expected 2024-02-01 to have a scheduled habit")
	}
}

func TestCreateSeries_Validation(t *testing.T) {
	remote := &fakeRemote{}
	e, store, _, _ := newTestEngine(remote, ModeCacheFirst)

	if _, err := e.CreateSeries("Class", d("2024-01-31"), 0); !errors.Is(err, ErrCountRequired) {
		t.Errorf("expected ErrCountRequired, got %v", err)
	}
	if _, err := e.CreateSeries("Class", d("2024-01-31"), MaxSeriesCount+1); !errors.Is(err, ErrCountTooLarge) {
		t.Errorf("expected ErrCountTooLarge, got %v", err)
	}
	if _, err := e.CreateSeries("", d("2024-01-31"), 2); !errors.Is(err, ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
	if _, err := e.CreateSeries("Class", habit.Date{}, 2); !errors.Is(err, ErrDateRequired) {
		t.Errorf("expected ErrDateRequired, got %v", err)
	}
	e.Wait()

	if len(store.Habits()) != 0 || len(remote.batches) != 0 {
		t.Error("validation failure mutated state or reached the remote")
	}
}

func TestToggleCompletion_AlreadyDoneIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	e, store, cache, r := newTestEngine(remote, ModeCacheFirst)

	if err := e.ToggleCompletion("a", d("2024-01-31"), true); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	if len(store.Logs()) != 0 || cache.saveCount() != 0 || r.count() != 0 || len(remote.logged) != 0 {
		t.Error("expected toggling a completed habit to do nothing")
	}
	if len(e.Writes()) != 0 {
		t.Errorf("expected no ledger entry, got %+v", e.Writes())
	}
}

func TestToggleCompletion_Appends(t *testing.T) {
	remote := &fakeRemote{}
	e, store, _, _ := newTestEngine(remote, ModeCacheFirst)
	store.Replace([]habit.Habit{{ID: "a", Name: "read", Freq: habit.Daily}}, nil)

	day := d("2024-01-31")
	if err := e.ToggleCompletion("a", day, store.IsDone("a", day)); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	if !store.IsDone("a", day) {
		t.Fatal("expected habit to be done")
	}
	if view := store.Day(day); view.Percent != 100 {
		t.Errorf("expected 100%%, got %d", view.Percent)
	}
	if len(remote.logged) != 1 || remote.logged[0].HabitID != "a" || remote.logged[0].Date != day {
		t.Errorf("unexpected LOG_HABIT calls %+v", remote.logged)
	}
}

func TestToggleCompletion_ConcurrentCallsLogOnce(t *testing.T) {
	remote := &fakeRemote{}
	e, store, _, _ := newTestEngine(remote, ModeCacheFirst)
	store.Replace([]habit.Habit{{ID: "a", Name: "read", Freq: habit.Daily}}, nil)

	day := d("2024-01-31")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.ToggleCompletion("a", day, false); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	e.Wait()

	if n := len(store.Logs()); n != 1 {
		t.Errorf("expected 1 local log, got %d", n)
	}
	if n := len(remote.logged); n != 1 {
		t.Errorf("expected 1 LOG_HABIT call, got %d", n)
	}
	if n := len(e.Writes()); n != 1 {
		t.Errorf("expected 1 ledger entry, got %d", n)
	}
}

func TestToggleCompletion_RemoteFailureKeepsLocalLog(t *testing.T) {
	remote := &fakeRemote{putErr: errOffline}
	e, store, _, _ := newTestEngine(remote, ModeCacheFirst)

	day := d("2024-01-31")
	if err := e.ToggleCompletion("a", day, false); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	if !store.IsDone("a", day) {
		t.Error("expected the optimistic log to survive a failed write")
	}
	writes := e.Writes()
	if len(writes) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(writes))
	}
	if writes[0].Status != StatusFailed || writes[0].LastError != errOffline.Error() {
		t.Errorf("unexpected ledger entry %+v", writes[0])
	}
}

func TestClearFailedWrites(t *testing.T) {
	remote := &fakeRemote{putErr: errOffline}
	e, store, _, r := newTestEngine(remote, ModeCacheFirst)

	if err := e.ToggleCompletion("a", d("2024-01-31"), false); err != nil {
		t.Fatal(err)
	}
	e.Wait()
	before := r.count()

	if n := e.ClearFailedWrites(); n != 1 {
		t.Fatalf("expected 1 cleared write, got %d", n)
	}
	if len(e.Writes()) != 0 {
		t.Errorf("expected an empty ledger, got %+v", e.Writes())
	}
	if !store.IsDone("a", d("2024-01-31")) {
		t.Error("clearing the ledger must keep the local log")
	}
	if r.count() != before+1 {
		t.Errorf("expected one render after clearing, got %d", r.count()-before)
	}
}

// A snapshot requested before a local create and answered after it replaces
// state wholesale, so the new habit disappears until the next refresh.
func TestStaleSnapshotDropsNewerHabit(t *testing.T) {
	remote := &fakeRemote{
		snap:       habit.Snapshot{Habits: []habit.Habit{{ID: "old", Name: "old", Freq: habit.Daily}}},
		getGate:    make(chan struct{}),
		getEntered: make(chan struct{}, 1),
	}
	e, store, _, _ := newTestEngine(remote, ModeCacheFirst)

	done := make(chan error, 1)
	go func() { done <- e.FetchSnapshot(context.Background()) }()
	<-remote.getEntered

	h, err := e.CreateHabit("new", habit.Daily, habit.Date{})
	if err != nil {
		t.Fatal(err)
	}
	e.Wait()
	if _, ok := store.Habit(h.ID); !ok {
		t.Fatal("expected optimistic habit before the stale snapshot lands")
	}

	close(remote.getGate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Habit(h.ID); ok {
		t.Fatal("expected the stale snapshot to drop the newer habit")
	}
	writes := e.Writes()
	if len(writes) != 1 || writes[0].Status != StatusPending || writes[0].Misses != 0 {
		t.Errorf("expected the write to stay pending without a miss, got %+v", writes)
	}

	// The remote store did receive the habit, so it still shows up on the
	// next refresh in a real deployment. Here the fake does not apply writes.
	if len(remote.added) != 1 {
		t.Errorf("expected ADD_HABIT to have been sent, got %+v", remote.added)
	}
}

func TestLedger_ConfirmedBySnapshot(t *testing.T) {
	remote := &fakeRemote{apply: true}
	e, _, _, _ := newTestEngine(remote, ModeCacheFirst)

	if _, err := e.CreateHabit("read", habit.Daily, habit.Date{}); err != nil {
		t.Fatal(err)
	}
	if err := e.ToggleCompletion("id-1", d("2024-01-31"), false); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	if c := e.WriteCounts(); c[StatusPending] != 2 {
		t.Fatalf("expected 2 pending writes, got %v", c)
	}
	if err := e.FetchSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c := e.WriteCounts(); c[StatusConfirmed] != 2 {
		t.Fatalf("expected 2 confirmed writes, got %v", c)
	}
	if err := e.FetchSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(e.Writes()); n != 0 {
		t.Errorf("expected confirmed writes to be pruned, got %d", n)
	}
}

func TestLedger_LostWriteFailsAfterMisses(t *testing.T) {
	remote := &fakeRemote{}
	e, _, _, _ := newTestEngine(remote, ModeCacheFirst)

	if _, err := e.CreateHabit("read", habit.Daily, habit.Date{}); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	for i := 1; i <= DefaultMissThreshold; i++ {
		if err := e.FetchSnapshot(context.Background()); err != nil {
			t.Fatal(err)
		}
		w := e.Writes()[0]
		if w.Misses != i {
			t.Fatalf("after fetch %d: misses = %d", i, w.Misses)
		}
	}
	if w := e.Writes()[0]; w.Status != StatusFailed {
		t.Errorf("expected failed after %d misses, got %s", DefaultMissThreshold, w.Status)
	}
}

func TestNetworkOnly_CreateAppearsAfterRefresh(t *testing.T) {
	remote := &fakeRemote{apply: true, putGate: make(chan struct{})}
	e, store, cache, _ := newTestEngine(remote, ModeNetworkOnly)

	h, err := e.CreateHabit("read", habit.Daily, habit.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if h.ID != "" {
		t.Errorf("expected no client id in network-only mode, got %q", h.ID)
	}
	if len(store.Habits()) != 0 {
		t.Fatal("expected no optimistic append in network-only mode")
	}

	close(remote.putGate)
	e.Wait()

	got := store.Habits()
	if len(got) != 1 || got[0].ID != "srv-1" {
		t.Fatalf("expected server-assigned habit after refresh, got %+v", got)
	}
	if remote.gets != 1 {
		t.Errorf("expected one refresh, got %d", remote.gets)
	}
	if cache.saveCount() != 0 {
		t.Errorf("expected no cache writes in network-only mode, got %d", cache.saveCount())
	}
	if c := e.WriteCounts(); c[StatusConfirmed] != 1 {
		t.Errorf("expected the create to be confirmed by name and date, got %v", c)
	}
}

func TestNetworkOnly_ToggleStaysOptimistic(t *testing.T) {
	remote := &fakeRemote{}
	e, store, _, _ := newTestEngine(remote, ModeNetworkOnly)

	if err := e.ToggleCompletion("a", d("2024-01-31"), false); err != nil {
		t.Fatal(err)
	}
	if !store.IsDone("a", d("2024-01-31")) {
		t.Error("expected toggle to apply locally")
	}
	e.Wait()
	if remote.gets != 0 {
		t.Errorf("expected no refresh after a toggle, got %d", remote.gets)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeCacheFirst, "cache-first": ModeCacheFirst, "network-only": ModeNetworkOnly} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("offline"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
