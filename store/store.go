// Package store holds the client's mirror of the server state.
//
// A single mutex guards the snapshot. The render tick holds it for the whole
// of its read-compute cycle through Tick, so everything drawn in one frame
// comes from one snapshot. The network receive path only ever tries the
// lock (TryMerge): when a tick is in progress the incoming snapshot is
// dropped, not queued, and the next broadcast replaces it.
package store

import (
	"errors"
	"sync"
	"sync/atomic"

	"agarclient/game"
	"agarclient/geom"
)

// ErrIdentitySet is returned by SetIdentity after the first call.
var ErrIdentitySet = errors.New("store: identity already set")

// Identity is what the server assigns on connect.
type Identity struct {
	PlayerID string
	World    game.World
}

// Stats counts merge outcomes.
type Stats struct {
	Merged  uint64
	Dropped uint64
}

// Store is safe for one writer and one reader running concurrently.
type Store struct {
	identity atomic.Pointer[Identity]

	mu       sync.Mutex
	snapshot *game.Snapshot
	actual   game.Position
	previous game.Position
	present  bool
	moved    bool

	merged  atomic.Uint64
	dropped atomic.Uint64
}

// New returns an empty store with no identity.
func New() *Store {
	return &Store{snapshot: &game.Snapshot{}}
}

// SetIdentity records the local player id and world. Only the first call
// has an effect. The local position is taken from the current snapshot at
// once, so it agrees with Read even when updates arrived first.
func (s *Store) SetIdentity(playerID string, w game.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.identity.CompareAndSwap(nil, &Identity{PlayerID: playerID, World: w}) {
		return ErrIdentitySet
	}
	me, ok := s.snapshot.Player(playerID)
	s.present = ok
	s.moved = false
	if ok {
		s.actual = me.Position
		s.previous = me.Position
	}
	return nil
}

// Identity returns the identity set on connect.
func (s *Store) Identity() (Identity, bool) {
	id := s.identity.Load()
	if id == nil {
		return Identity{}, false
	}
	return *id, true
}

// HasIdentity reports whether SetIdentity has been called.
func (s *Store) HasIdentity() bool {
	return s.identity.Load() != nil
}

// TryMerge publishes snap unless the lock is held, in which case snap is
// discarded and false is returned. The snapshot must not be modified by the
// caller afterwards.
func (s *Store) TryMerge(snap *game.Snapshot) bool {
	if !s.mu.TryLock() {
		s.dropped.Add(1)
		return false
	}
	defer s.mu.Unlock()
	s.publish(snap)
	return true
}

// Merge publishes snap, waiting for the lock.
func (s *Store) Merge(snap *game.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(snap)
}

func (s *Store) publish(snap *game.Snapshot) {
	if snap == nil {
		snap = &game.Snapshot{}
	}
	s.snapshot = snap
	s.merged.Add(1)

	id := s.identity.Load()
	if id == nil {
		return
	}
	me, ok := snap.Player(id.PlayerID)
	if !ok {
		s.present = false
		s.moved = false
		return
	}
	if s.present {
		s.previous = s.actual
		s.moved = true
	} else {
		s.previous = me.Position
		s.moved = false
	}
	s.actual = me.Position
	s.present = true
}

// Read returns the current snapshot.
func (s *Store) Read() *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// ActualPosition returns the local player's position in the current
// snapshot. It is false before identity is known, before the first update
// that includes the player, and after the server removes the player.
func (s *Store) ActualPosition() (game.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actual, s.present
}

// Motion returns how far the local player moved between the last two
// updates that contained it.
func (s *Store) Motion() (geom.Vec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Motion()
}

// Stats returns merge counters.
func (s *Store) Stats() Stats {
	return Stats{Merged: s.merged.Load(), Dropped: s.dropped.Load()}
}

// Tick runs fn with the lock held. Updates that arrive meanwhile are
// dropped. The lock is released however fn returns.
func (s *Store) Tick(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.view())
}

func (s *Store) view() View {
	v := View{
		Snapshot: s.snapshot,
		actual:   s.actual,
		previous: s.previous,
		present:  s.present,
		moved:    s.moved,
	}
	if id := s.identity.Load(); id != nil {
		v.Identity = *id
		v.identified = true
	}
	return v
}

// View is a consistent read of the store taken under its lock.
type View struct {
	Snapshot *game.Snapshot
	Identity Identity

	identified bool
	actual     game.Position
	previous   game.Position
	present    bool
	moved      bool
}

// Identified reports whether Identity is valid.
func (v View) Identified() bool { return v.identified }

// ActualPosition is Store.ActualPosition as of this view.
func (v View) ActualPosition() (game.Position, bool) {
	return v.actual, v.present
}

// Motion is the local player's displacement between its previous and
// current positions, wrapped to the shortest path.
func (v View) Motion() (geom.Vec, bool) {
	if !v.identified || !v.present || !v.moved {
		return geom.Vec{}, false
	}
	return geom.Vector(v.previous, v.actual, v.Identity.World), true
}
