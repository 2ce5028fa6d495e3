package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

// SyncState represents the current state of the refresh loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncFetching
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncFetching:
		return "fetching"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus is a point-in-time view of the refresh loop.
type SyncStatus struct {
	State     SyncState
	InFlight  int
	LastSync  time.Time
	Error     error
	Discarded uint64
}

// RefreshResultMsg is a tea.Msg sent when a refresh completes.
type RefreshResultMsg struct {
	Epoch   uint64
	Applied bool
	Kept    int
	Err     error

	// SessionExpired is set when the server rejected the session token.
	SessionExpired bool
}

// Fetcher downloads the full dataset.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (model.Snapshot, error)
}

// MutationLog reports entities touched by local mutations so a refresh
// does not overwrite them with older server state.
type MutationLog interface {
	// Mark records a refresh dispatch point.
	Mark() uint64
	// Since returns keys touched by mutations still in flight or issued
	// after mark.
	Since(mark uint64) cache.KeySet
	// Release forgets mark once its refresh is done.
	Release(mark uint64)
}

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 4500 * time.Millisecond

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// Poller keeps the cache in step with the server by periodically
// replacing it with a full snapshot.
type Poller struct {
	fetcher   Fetcher
	store     *cache.Store
	mutations MutationLog
	guard     Guard
	interval  time.Duration
	onExpired func()

	resultCh  chan RefreshResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	status    SyncStatus
	wg        gosync.WaitGroup
}

// New creates a Poller that refreshes s from f every interval. mutations
// may be nil when nothing issues local writes.
func New(f Fetcher, s *cache.Store, mutations MutationLog, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:   f,
		store:     s,
		mutations: mutations,
		interval:  interval,
		resultCh:  make(chan RefreshResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
}

// OnSessionExpired registers fn to run when a refresh is rejected with 401.
func (p *Poller) OnSessionExpired(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onExpired = fn
}

// Start launches the refresh loop, which fetches immediately and then on
// every tick, and returns a command that delivers the first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(stop)

	return p.waitForResult()
}

// Stop halts the ticker. Requests already in flight complete, but their
// responses are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
	p.guard.Invalidate()
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// RefreshNow triggers an immediate refresh outside the schedule.
func (p *Poller) RefreshNow() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// One pending trigger is enough.
	}
	return nil
}

// Status returns the current state of the loop.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.status
	st.Discarded = p.guard.Discarded()
	return st
}

// Wait blocks until every refresh started by the loop has finished. Call
// it after Stop; no refresh is spawned once the poller is stopped.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	p.sendResult(p.Refresh(context.Background()))
	p.wg.Done()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.spawn()
		case <-p.triggerCh:
			p.spawn()
		}
	}
}

// spawn runs a refresh in its own goroutine so a slow response can be
// overtaken by the next one. The Add happens under p.mu so it cannot race
// a Wait that follows Stop.
func (p *Poller) spawn() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()
	go func() {
		defer p.wg.Done()
		p.sendResult(p.Refresh(context.Background()))
	}()
}

// Refresh performs one fetch-and-replace cycle and reports the outcome.
// Errors are logged and returned in the message, never surfaced as toasts.
func (p *Poller) Refresh(ctx context.Context) RefreshResultMsg {
	epoch := p.guard.Begin()
	var mark uint64
	if p.mutations != nil {
		mark = p.mutations.Mark()
		defer p.mutations.Release(mark)
	}
	p.beginFetch()

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	snap, err := p.fetcher.FetchSnapshot(ctx)
	if err != nil {
		p.endFetch(err)
		msg := RefreshResultMsg{Epoch: epoch, Err: err}
		if api.IsSessionExpired(err) {
			msg.SessionExpired = true
			logging.Logger.WithField("epoch", epoch).Warn("refresh rejected: session expired")
			p.expire()
			return msg
		}
		logging.Logger.WithError(err).WithField("epoch", epoch).Warn("refresh failed")
		return msg
	}

	var res cache.ReplaceResult
	applied := p.guard.Apply(epoch, func() {
		res = p.store.ReplaceAllFunc(snap, func() cache.KeySet {
			if p.mutations == nil {
				return nil
			}
			return p.mutations.Since(mark)
		})
	})
	p.endFetch(nil)

	fields := logrus.Fields{"epoch": epoch, "entities": snap.EntityCount()}
	if !applied {
		logging.Logger.WithFields(fields).Debug("refresh discarded: stale epoch")
		return RefreshResultMsg{Epoch: epoch}
	}
	if len(res.Kept) > 0 {
		fields["kept"] = len(res.Kept)
	}
	logging.Logger.WithFields(fields).Debug("refresh applied")
	return RefreshResultMsg{Epoch: epoch, Applied: true, Kept: len(res.Kept)}
}

func (p *Poller) expire() {
	p.mu.Lock()
	fn := p.onExpired
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *Poller) beginFetch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.InFlight++
	p.status.State = SyncFetching
}

func (p *Poller) endFetch(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.InFlight--
	switch {
	case err != nil:
		p.status.Error = err
		if p.status.InFlight == 0 {
			p.status.State = SyncError
		}
	case p.status.InFlight == 0:
		p.status.State = SyncIdle
		p.status.Error = nil
		p.status.LastSync = time.Now()
	default:
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a result on the result channel without blocking.
func (p *Poller) sendResult(msg RefreshResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after handling a RefreshResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
