// Package state holds the single shared device snapshot and fans new
// values out to observers.
package state

import (
	"sync"
	"sync/atomic"

	"github.com/prabalesh/healthtop/internal/models"
)

// Store owns the current DeviceHealthState. Writers replace the whole value
// with Update; readers see either the old or the new snapshot.
type Store struct {
	current atomic.Pointer[models.DeviceHealthState]

	mu     sync.Mutex
	subs   map[int]chan models.DeviceHealthState
	nextID int
	closed bool
}

func NewStore(initial models.DeviceHealthState) *Store {
	s := &Store{subs: make(map[int]chan models.DeviceHealthState)}
	v := initial.Clone()
	s.current.Store(&v)
	return s
}

// Load returns the latest published snapshot.
func (s *Store) Load() models.DeviceHealthState {
	return s.current.Load().Clone()
}

// Update derives the next snapshot from the current one and publishes it.
// fn may run more than once if another writer wins the swap, so it must
// not have side effects.
func (s *Store) Update(fn func(models.DeviceHealthState) models.DeviceHealthState) models.DeviceHealthState {
	for {
		old := s.current.Load()
		next := fn(old.Clone()).Clone()
		if s.current.CompareAndSwap(old, &next) {
			s.notify(next)
			return next.Clone()
		}
	}
}

// Subscribe returns a channel carrying every snapshot published from now
// on. A slow reader only ever sees the latest pending value. The returned
// func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan models.DeviceHealthState, func()) {
	ch := make(chan models.DeviceHealthState, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close closes every subscriber channel. Later Updates still swap the value
// but notify nobody.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) notify(v models.DeviceHealthState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		// drop the stale pending value, if any
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v.Clone():
		default:
		}
	}
}
