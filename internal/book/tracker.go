package book

import (
	"sync"

	"marketpulse/internal/domain"
)

// Tracker holds the latest aggregated snapshot for the selected symbol.
// Updates arrive from the depth feed; the view configuration arrives from
// the UI collaborator. Both re-aggregate from the last raw levels, so a
// visibility toggle takes effect without waiting for the next update.
type Tracker struct {
	mu     sync.RWMutex
	symbol string
	view   domain.BookView
	levels []domain.BookLevel
	snap   domain.BookSnapshot
}

// NewTracker creates a tracker for one symbol with the given view.
func NewTracker(symbol string, view domain.BookView) *Tracker {
	return &Tracker{symbol: symbol, view: view}
}

// Symbol returns the tracked symbol.
func (t *Tracker) Symbol() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.symbol
}

// Update replaces the raw levels and recomputes the snapshot.
// Returns the fresh snapshot.
func (t *Tracker) Update(levels []domain.BookLevel) domain.BookSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.levels = levels
	t.snap = Aggregate(levels, t.view)
	return t.snap
}

// SetView installs a new view configuration and recomputes from the last
// raw levels.
func (t *Tracker) SetView(view domain.BookView) domain.BookSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view = view
	t.snap = Aggregate(t.levels, view)
	return t.snap
}

// SetSymbol switches the tracked symbol, discarding stale levels. Depth
// for the previous pair is meaningless for the new one.
func (t *Tracker) SetSymbol(symbol string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if symbol == t.symbol {
		return
	}
	t.symbol = symbol
	t.levels = nil
	t.snap = Aggregate(nil, t.view)
}

// Snapshot returns the latest aggregated view.
func (t *Tracker) Snapshot() domain.BookSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
