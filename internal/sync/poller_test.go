package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

func init() {
	logging.Discard()
}

type fetchResult struct {
	snap model.Snapshot
	err  error
}

// orderedFetcher hands out gates in call order.
type orderedFetcher struct {
	mu      gosync.Mutex
	calls   int
	gates   []chan fetchResult
	started chan int
}

func newOrderedFetcher(n int) *orderedFetcher {
	f := &orderedFetcher{started: make(chan int, n)}
	for i := 0; i < n; i++ {
		f.gates = append(f.gates, make(chan fetchResult, 1))
	}
	return f
}

func (f *orderedFetcher) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	f.started <- i
	r := <-f.gates[i]
	return r.snap, r.err
}

// staticFetcher returns the same response on every call.
type staticFetcher struct {
	mu    gosync.Mutex
	snap  model.Snapshot
	err   error
	calls int
}

func (f *staticFetcher) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, f.err
}

func (f *staticFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func snapshotNamed(name string) model.Snapshot {
	return model.Snapshot{
		Projects: map[string]model.Project{
			"p1": {ID: "p1", Name: name, Columns: map[string]model.Column{}, Tasks: map[string]model.Task{}},
		},
	}
}

func TestGuard(t *testing.T) {
	var g Guard
	e1 := g.Begin()
	if !g.Current(e1) {
		t.Fatal("fresh epoch not current")
	}
	e2 := g.Begin()
	if g.Current(e1) {
		t.Error("older epoch still current")
	}
	if g.Apply(e1, func() { t.Error("stale apply ran") }) {
		t.Error("Apply() = true for stale epoch")
	}
	ran := false
	if !g.Apply(e2, func() { ran = true }) || !ran {
		t.Error("Apply() did not run for current epoch")
	}
	g.Invalidate()
	if g.Current(e2) {
		t.Error("epoch current after Invalidate")
	}
	if g.Discarded() != 1 {
		t.Errorf("Discarded() = %d, want 1", g.Discarded())
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	store := cache.New()
	f := newOrderedFetcher(2)
	p := New(f, store, nil, time.Hour)

	results := make(chan RefreshResultMsg, 2)
	go func() { results <- p.Refresh(context.Background()) }()
	<-f.started
	go func() { results <- p.Refresh(context.Background()) }()
	<-f.started

	// The newer refresh resolves first.
	f.gates[1] <- fetchResult{snap: snapshotNamed("epoch-6")}
	newer := <-results
	f.gates[0] <- fetchResult{snap: snapshotNamed("epoch-5")}
	older := <-results

	if !newer.Applied {
		t.Error("newer response not applied")
	}
	if older.Applied {
		t.Error("older response applied after a newer one")
	}
	got, _ := store.Project("p1")
	if got.Name != "epoch-6" {
		t.Errorf("project name = %q, want epoch-6", got.Name)
	}
	if p.Status().Discarded != 1 {
		t.Errorf("Discarded = %d, want 1", p.Status().Discarded)
	}
}

func TestRefreshFailureIsSwallowed(t *testing.T) {
	store := cache.New()
	var seed cache.Patch
	seed.PutProject(model.Project{ID: "p1", Name: "local", Columns: map[string]model.Column{}, Tasks: map[string]model.Task{}})
	if err := store.ApplyPatch(seed); err != nil {
		t.Fatal(err)
	}

	f := &staticFetcher{err: &api.NetworkError{Method: "GET", Path: "/data/", Err: errors.New("refused")}}
	p := New(f, store, nil, time.Hour)

	msg := p.Refresh(context.Background())
	if msg.Err == nil || msg.Applied {
		t.Fatalf("Refresh() = %+v, want error and not applied", msg)
	}
	if _, ok := store.Project("p1"); !ok {
		t.Error("failed refresh changed the store")
	}
	if st := p.Status(); st.State != SyncError || st.Error == nil {
		t.Errorf("Status() = %+v, want error state", st)
	}
}

func TestSessionExpiredHook(t *testing.T) {
	f := &staticFetcher{err: &api.SessionExpiredError{Path: "/data/"}}
	p := New(f, cache.New(), nil, time.Hour)

	fired := 0
	p.OnSessionExpired(func() { fired++ })

	msg := p.Refresh(context.Background())
	if !msg.SessionExpired {
		t.Error("SessionExpired = false")
	}
	if fired != 1 {
		t.Errorf("hook fired %d times, want 1", fired)
	}
}

// fakeLog reports a fixed key set as touched.
type fakeLog struct {
	keys     cache.KeySet
	released []uint64
}

func (l *fakeLog) Mark() uint64                   { return 7 }
func (l *fakeLog) Since(mark uint64) cache.KeySet { return l.keys }
func (l *fakeLog) Release(mark uint64)            { l.released = append(l.released, mark) }

func TestRefreshKeepsMutatedEntities(t *testing.T) {
	store := cache.New()
	var seed cache.Patch
	seed.PutProject(model.Project{ID: "p1", Name: "optimistic", Columns: map[string]model.Column{}, Tasks: map[string]model.Task{}})
	if err := store.ApplyPatch(seed); err != nil {
		t.Fatal(err)
	}

	log := &fakeLog{keys: cache.NewKeySet(cache.ProjectKey("p1"))}
	f := &staticFetcher{snap: snapshotNamed("server")}
	p := New(f, store, log, time.Hour)

	msg := p.Refresh(context.Background())
	if !msg.Applied || msg.Kept != 1 {
		t.Fatalf("Refresh() = %+v, want applied with 1 kept", msg)
	}
	got, _ := store.Project("p1")
	if got.Name != "optimistic" {
		t.Errorf("project name = %q, want optimistic", got.Name)
	}
	if len(log.released) != 1 || log.released[0] != 7 {
		t.Errorf("released = %v, want [7]", log.released)
	}
}

func TestStartStop(t *testing.T) {
	store := cache.New()
	f := &staticFetcher{snap: snapshotNamed("server")}
	p := New(f, store, nil, 10*time.Millisecond)

	cmd := p.Start()
	if cmd == nil {
		t.Fatal("Start() returned nil command")
	}
	first, ok := cmd().(RefreshResultMsg)
	if !ok || !first.Applied {
		t.Fatalf("first result = %+v, want applied refresh", first)
	}
	if p.Start() != nil {
		t.Error("second Start() returned a command")
	}

	p.RefreshNow()
	deadline := time.After(2 * time.Second)
	for f.Calls() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d fetches before deadline", f.Calls())
		case <-time.After(5 * time.Millisecond):
		}
	}

	p.Stop()
	if p.Running() {
		t.Error("Running() = true after Stop")
	}
	p.Wait()
	calls := f.Calls()
	time.Sleep(50 * time.Millisecond)
	if f.Calls() != calls {
		t.Errorf("fetches continued after Stop: %d -> %d", calls, f.Calls())
	}
}

func TestWaitAfterStopWithTicks(t *testing.T) {
	f := &staticFetcher{snap: snapshotNamed("server")}
	for i := 0; i < 20; i++ {
		p := New(f, cache.New(), nil, time.Millisecond)
		p.Start()
		time.Sleep(time.Duration(i%4) * time.Millisecond)
		p.Stop()
		p.Wait()
		if p.Running() {
			t.Fatal("Running() = true after Stop")
		}
		// A tick selected after Stop must not start a refresh.
		calls := f.Calls()
		p.spawn()
		p.Wait()
		if f.Calls() != calls {
			t.Fatalf("refresh spawned after Stop: %d -> %d", calls, f.Calls())
		}
	}
}

func TestStopDiscardsInFlight(t *testing.T) {
	store := cache.New()
	f := newOrderedFetcher(1)
	p := New(f, store, nil, time.Hour)

	done := make(chan RefreshResultMsg, 1)
	go func() { done <- p.Refresh(context.Background()) }()
	<-f.started

	p.mu.Lock()
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()
	p.Stop()

	f.gates[0] <- fetchResult{snap: snapshotNamed("late")}
	if msg := <-done; msg.Applied {
		t.Error("response applied after Stop")
	}
	if _, ok := store.Project("p1"); ok {
		t.Error("store written after Stop")
	}
}
