// Package signal provides a payload-less, in-process broadcast. A raise is
// delivered synchronously to the subscribers registered at that moment and is
// then forgotten: there is no queue and nothing is replayed to late
// subscribers.
package signal

import "sync"

type Signal struct {
	name string

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]func()
}

func New(name string) *Signal {
	return &Signal{name: name, subs: make(map[uint64]func())}
}

// Name identifies the signal in log output.
func (s *Signal) Name() string {
	return s.name
}

// Subscribe registers fn and returns the function that removes it. Calling
// the returned function more than once is harmless.
func (s *Signal) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Raise notifies every current subscriber once and returns how many were
// reached. Subscribers run outside the lock so they may subscribe or
// unsubscribe from within the callback.
func (s *Signal) Raise() int {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Subscribers returns the number of registered consumers.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
