package session

import (
	"sync"
	"time"
)

type entry struct {
	mu      sync.Mutex
	session Session
}

// Store is an in-memory session registry with a per-user lock, so overlapping
// requests for the same user are serialized while different users proceed
// concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (st *Store) entryFor(userID string) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[userID]
	if !ok {
		e = &entry{session: Session{UserID: userID, State: StateIdle, UpdatedAt: time.Now()}}
		st.entries[userID] = e
	}
	return e
}

// Do runs fn with the user's session under the per-user lock. Long-running
// work for a user, generation included, goes through here so a second request
// from the same user waits its turn.
func (st *Store) Do(userID string, fn func(*Session) error) error {
	e := st.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.session)
}

// Get returns a snapshot of the user's session.
func (st *Store) Get(userID string) Session {
	e := st.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Stale returns the user IDs whose sessions have not been touched since the
// cutoff. Used by the periodic sweep to reclaim abandoned intakes.
func (st *Store) Stale(cutoff time.Time) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	var ids []string
	for id, e := range st.entries {
		e.mu.Lock()
		if e.session.State != StateIdle && e.session.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
		e.mu.Unlock()
	}
	return ids
}

// Len reports how many sessions the store holds.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}
