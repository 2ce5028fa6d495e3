package mutation

import (
	"sync"

	"github.com/nhle/boardsync/internal/cache"
)

type trackedMutation struct {
	keys cache.KeySet
	done bool
}

// Tracker records which entities each mutation touches so a refresh that
// overlaps a mutation cannot overwrite its result. Mutations are numbered
// in issue order. A refresh marks the number just below the oldest
// mutation still in flight at its dispatch, so a mutation that settles
// while the fetch is pending stays protected until the refresh is applied.
type Tracker struct {
	mu        sync.Mutex
	seq       uint64
	mutations map[uint64]*trackedMutation
	marks     map[uint64]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		mutations: map[uint64]*trackedMutation{},
		marks:     map[uint64]int{},
	}
}

// Begin registers a mutation touching keys and returns its number.
func (t *Tracker) Begin(keys cache.KeySet) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	own := cache.KeySet{}
	own.Merge(keys)
	t.mutations[t.seq] = &trackedMutation{keys: own}
	return t.seq
}

// Touch adds keys to a registered mutation, for entities whose ids are
// only known once the server answers.
func (t *Tracker) Touch(seq uint64, keys cache.KeySet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.mutations[seq]; ok {
		m.keys.Merge(keys)
	}
}

// End marks a mutation as settled.
func (t *Tracker) End(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.mutations[seq]; ok {
		m.done = true
	}
	t.prune()
}

// Mark records a refresh dispatch. The returned number is below every
// mutation in flight at this moment.
func (t *Tracker) Mark() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	mark := t.seq
	for seq, m := range t.mutations {
		if !m.done && seq-1 < mark {
			mark = seq - 1
		}
	}
	t.marks[mark]++
	return mark
}

// Since returns the keys touched by mutations still in flight or numbered
// after mark, settled or not.
func (t *Tracker) Since(mark uint64) cache.KeySet {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := cache.KeySet{}
	for seq, m := range t.mutations {
		if !m.done || seq > mark {
			keys.Merge(m.keys)
		}
	}
	return keys
}

// Release drops a mark recorded by Mark.
func (t *Tracker) Release(mark uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.marks[mark] <= 1 {
		delete(t.marks, mark)
	} else {
		t.marks[mark]--
	}
	t.prune()
}

// InFlight returns the number of unsettled mutations.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, m := range t.mutations {
		if !m.done {
			n++
		}
	}
	return n
}

// prune forgets settled mutations no outstanding refresh can still see
// as newer than itself. Lock must be held.
func (t *Tracker) prune() {
	oldest := t.seq
	for mark := range t.marks {
		if mark < oldest {
			oldest = mark
		}
	}
	for seq, m := range t.mutations {
		if m.done && seq <= oldest {
			delete(t.mutations, seq)
		}
	}
}
