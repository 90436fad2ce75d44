package market

import (
	"sync"

	"marketpulse/internal/domain"
)

// Listener receives the store version current at notification time.
type Listener func(version uint64)

// Store holds the authoritative, versioned market list for one domain
// (spot or futures) plus the user-applied view filters. Instances never
// share state; each is constructed by its domain's controller and passed
// by handle, never looked up ambiently.
//
// rows is exclusively replaced — never mutated element-wise — so readers
// always hold a consistent snapshot without further synchronization.
type Store struct {
	name string

	mu            sync.RWMutex
	rows          []*domain.MarketRow
	searchQuery   string
	favorites     map[string]bool
	favoritesOnly bool
	version       uint64

	subs   map[int]Listener
	nextID int
}

// NewStore creates an empty store for one market domain.
func NewStore(name string) *Store {
	return &Store{
		name:      name,
		favorites: make(map[string]bool),
		subs:      make(map[int]Listener),
	}
}

// Name returns the market domain this store serves.
func (s *Store) Name() string { return s.name }

// Rows returns the current snapshot. Callers must treat it as immutable.
func (s *Store) Rows() []*domain.MarketRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Version returns the current snapshot version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetRows installs a new market list (listing/delisting, an external
// collaborator operation). Bumps the version and notifies.
func (s *Store) SetRows(rows []*domain.MarketRow) {
	s.mu.Lock()
	s.rows = rows
	s.version++
	v := s.version
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, v)
}

// ApplyMergeResult replaces rows with a merge engine result. This and
// SetRows are the only mutators of rows. Each call increments the version
// by exactly one and notifies every subscriber exactly once.
func (s *Store) ApplyMergeResult(rows []*domain.MarketRow) {
	s.mu.Lock()
	s.rows = rows
	s.version++
	v := s.version
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, v)
}

// SetSearchQuery replaces the search filter and notifies. Rows and version
// are untouched.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.searchQuery = q
	v := s.version
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, v)
}

// SearchQuery returns the current search filter.
func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetFavorite flags or unflags a symbol and notifies.
func (s *Store) SetFavorite(symbol string, fav bool) {
	s.mu.Lock()
	if fav {
		s.favorites[symbol] = true
	} else {
		delete(s.favorites, symbol)
	}
	v := s.version
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, v)
}

// IsFavorite reports whether a symbol is flagged.
func (s *Store) IsFavorite(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorites[symbol]
}

// Favorites returns the flagged symbols.
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.favorites))
	for sym := range s.favorites {
		out = append(out, sym)
	}
	return out
}

// SetFavoritesOnly toggles the favorites-only view filter and notifies.
func (s *Store) SetFavoritesOnly(on bool) {
	s.mu.Lock()
	s.favoritesOnly = on
	v := s.version
	subs := s.listeners()
	s.mu.Unlock()

	notify(subs, v)
}

// VisibleRows applies the current view filters to the snapshot. Computed
// on read, not cached: recomputation is cheap next to update frequency.
func (s *Store) VisibleRows() []*domain.MarketRow {
	s.mu.RLock()
	rows := s.rows
	query := s.searchQuery
	favOnly := s.favoritesOnly
	s.mu.RUnlock()

	rows = FilterRows(rows, query)
	if !favOnly {
		return rows
	}

	out := make([]*domain.MarketRow, 0, len(rows))
	for _, r := range rows {
		if s.IsFavorite(r.Symbol) {
			out = append(out, r)
		}
	}
	return out
}

// Subscribe registers a listener and returns its unsubscribe func.
// Listeners are invoked synchronously, outside the store lock, with the
// version current at mutation time.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// listeners snapshots subscribers. Must be called with the lock held.
func (s *Store) listeners() []Listener {
	out := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []Listener, version uint64) {
	for _, fn := range subs {
		fn(version)
	}
}
