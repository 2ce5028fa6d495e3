package sync

import gosync "sync"

// Guard orders refresh responses. Each refresh takes a new epoch before it
// is dispatched; a response is applied only while its epoch is still the
// latest one issued. Mutations never touch the counter.
type Guard struct {
	mu        gosync.Mutex
	epoch     uint64
	discarded uint64
}

// Begin issues the next epoch.
func (g *Guard) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
	return g.epoch
}

// Current reports whether e is the latest issued epoch.
func (g *Guard) Current(e uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return e == g.epoch
}

// Apply runs fn if e is still current, holding the guard so no newer epoch
// can be issued meanwhile. A stale epoch is counted as discarded.
func (g *Guard) Apply(e uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e != g.epoch {
		g.discarded++
		return false
	}
	fn()
	return true
}

// Invalidate makes every outstanding epoch stale.
func (g *Guard) Invalidate() {
	g.Begin()
}

// Discarded returns how many responses were dropped as stale.
func (g *Guard) Discarded() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.discarded
}
