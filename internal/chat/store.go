// Package chat holds the message state shared between the polling worker
// and the terminal runtime.
package chat

import (
	"slices"
	"sync"

	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Store is the shared message snapshot.
//
// full is replaced wholesale by the poller. pending collects messages that
// arrived since the runtime last drained it; every pending message is also
// in full. All accessors copy.
type Store struct {
	mu        sync.Mutex
	full      []types.Message
	pending   []types.Message
	version   uint64
	mutations uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceFull swaps in the latest server window.
func (s *Store) ReplaceFull(list []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bump(!slices.Equal(s.full, list))
	s.full = slices.Clone(list)
}

// AppendPending queues messages for the runtime's next drain.
func (s *Store) AppendPending(list []types.Message) {
	if len(list) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, list...)
	s.bump(true)
}

// Publish replaces full and queues fresh under one lock, so a reader never
// sees a pending message that is missing from full.
func (s *Store) Publish(full, fresh []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bump(len(fresh) > 0 || !slices.Equal(s.full, full))
	s.full = slices.Clone(full)
	s.pending = append(s.pending, fresh...)
}

// Snapshot returns copies of both lists taken under one lock.
func (s *Store) Snapshot() (full, pending []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.full), slices.Clone(s.pending)
}

// Full returns a copy of the latest server window.
func (s *Store) Full() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.full)
}

// DrainPending empties pending and returns what it held. A second call
// with no producer activity in between returns nothing.
func (s *Store) DrainPending() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.pending
	s.pending = nil
	if len(drained) > 0 {
		s.version++
	}
	return drained
}

// Version changes whenever the visible content changes. Republishing an
// identical window leaves it alone.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Mutations counts producer writes. It stops moving once the poller has stopped.
func (s *Store) Mutations() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// bump counts a producer write. The version only moves when changed is
// set, so an unchanged poll does not repaint the screen.
func (s *Store) bump(changed bool) {
	if changed {
		s.version++
	}
	s.mutations++
}
