// Package progress tracks ingest batch progress per user. The tracker is
// process-wide shared state: the ingest pipeline advances it while API
// clients poll it, so reads and writes for one user synchronize on that
// user's entry rather than on a tracker-wide lock.
package progress

import (
	"sync"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
)

// Tracker holds the in-flight batch state for every user. At most one batch
// is tracked per username; a new Reset supersedes whatever was in flight.
type Tracker struct {
	mu      sync.RWMutex
	batches map[string]*batch
}

// batch guards one user's progress. Completed and CurrentTitle always
// change together under the batch lock, so a reader can never observe one
// without the other.
type batch struct {
	mu sync.Mutex
	p  domain.IngestionProgress
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{batches: make(map[string]*batch)}
}

// Reset initializes progress for a new batch, replacing any prior in-flight
// progress for the username.
func (t *Tracker) Reset(username string, total int, currentTitle string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.batches[username] = &batch{
		p: domain.IngestionProgress{
			Total:        total,
			CurrentTitle: currentTitle,
		},
	}
}

// Advance increments the completed count by one and records the title just
// processed, as a single atomic step. Completed never exceeds Total and
// never decreases. Advancing a username with no tracked batch is a no-op.
func (t *Tracker) Advance(username, newTitle string) {
	t.mu.RLock()
	b, ok := t.batches[username]
	t.mu.RUnlock()
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.p.Completed < b.p.Total {
		b.p.Completed++
	}
	b.p.CurrentTitle = newTitle
}

// Read returns a consistent snapshot of the user's progress. The second
// return value is false when no batch is tracked for the username.
func (t *Tracker) Read(username string) (domain.IngestionProgress, bool) {
	t.mu.RLock()
	b, ok := t.batches[username]
	t.mu.RUnlock()
	if !ok {
		return domain.IngestionProgress{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.p, true
}

// Clear removes tracked progress for the username, e.g. after the client
// acknowledges batch completion.
func (t *Tracker) Clear(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.batches, username)
}
