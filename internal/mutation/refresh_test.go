package mutation_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
	boardsync "github.com/nhle/boardsync/internal/sync"
)

// gatedFetcher blocks each fetch until a snapshot is released to it.
type gatedFetcher struct {
	started chan struct{}
	release chan model.Snapshot
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{started: make(chan struct{}, 1), release: make(chan model.Snapshot, 1)}
}

func (g *gatedFetcher) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	g.started <- struct{}{}
	return <-g.release, nil
}

func TestRefreshDoesNotOverwriteMutation(t *testing.T) {
	e := newEnv(t)
	stale := e.fake.Snapshot()
	f := newGatedFetcher()
	poller := boardsync.New(f, e.store, e.d.Tracker(), time.Hour)

	done := make(chan boardsync.RefreshResultMsg, 1)
	go func() { done <- poller.Refresh(context.Background()) }()
	<-f.started

	cmd := mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c2", Position: 0}
	if _, err := e.d.Dispatch(context.Background(), cmd); err != nil {
		t.Fatal(err)
	}

	// The response predates the move.
	f.release <- stale
	msg := <-done
	if !msg.Applied {
		t.Fatalf("refresh not applied: %+v", msg)
	}
	if msg.Kept == 0 {
		t.Error("refresh kept no entities")
	}
	p, _ := e.store.Project("p1")
	if got := p.Columns["c2"].TaskIDs; !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("c2 = %v, want [t1]: refresh overwrote the move", got)
	}
	checkInvariants(t, e.store)

	// A refresh issued after the move settled applies normally.
	go func() { done <- poller.Refresh(context.Background()) }()
	<-f.started
	fresh := e.fake.Snapshot()
	fresh.Projects["p2"] = renamed(fresh.Projects["p2"], "Ops 2")
	f.release <- fresh
	if msg := <-done; !msg.Applied || msg.Kept != 0 {
		t.Errorf("second refresh = %+v, want applied with nothing kept", msg)
	}
	if p2, _ := e.store.Project("p2"); p2.Name != "Ops 2" {
		t.Errorf("p2 name = %q, want server value", p2.Name)
	}
}

// gatedMover holds MoveTask requests until proceed is closed.
type gatedMover struct {
	*api.Client
	entered chan struct{}
	proceed chan struct{}
}

func (g gatedMover) MoveTask(ctx context.Context, taskID, toColumnID string, position int) (api.MovedTask, error) {
	g.entered <- struct{}{}
	<-g.proceed
	return g.Client.MoveTask(ctx, taskID, toColumnID, position)
}

func TestRefreshDuringSettlingMutation(t *testing.T) {
	e := newEnv(t)
	stale := e.fake.Snapshot()
	client := gatedMover{
		Client:  api.NewClient(e.fake.URL(), nil, 5*time.Second),
		entered: make(chan struct{}, 1),
		proceed: make(chan struct{}),
	}
	d := mutation.NewDispatcher(client, e.store, mutation.Options{
		Notifier:    e.notices,
		MaxFailures: 3,
		OpenTimeout: time.Minute,
	})
	f := newGatedFetcher()
	poller := boardsync.New(f, e.store, d.Tracker(), time.Hour)

	moved := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(context.Background(), mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c2", Position: 0})
		moved <- err
	}()
	<-client.entered

	// The refresh goes out while the move is on the wire.
	done := make(chan boardsync.RefreshResultMsg, 1)
	go func() { done <- poller.Refresh(context.Background()) }()
	<-f.started

	close(client.proceed)
	if err := <-moved; err != nil {
		t.Fatal(err)
	}
	p, _ := e.store.Project("p1")
	if got := p.Columns["c2"].TaskIDs; !reflect.DeepEqual(got, []string{"t1"}) {
		t.Fatalf("c2 = %v after the move settled, want [t1]", got)
	}

	// Its response was built before the server saw the move.
	f.release <- stale
	msg := <-done
	if !msg.Applied || msg.Kept == 0 {
		t.Errorf("refresh = %+v, want applied with the moved project kept", msg)
	}
	p, _ = e.store.Project("p1")
	if got := p.Columns["c2"].TaskIDs; !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("c2 = %v, want [t1]: the refresh undid a confirmed move", got)
	}
	checkInvariants(t, e.store)
}

func renamed(p model.Project, name string) model.Project {
	p.Name = name
	return p
}
