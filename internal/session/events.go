package session

import (
	"slices"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
)

// Subscribe registers fn for session change events and returns a function
// that removes it. Events are delivered synchronously, in registration
// order, after the change is visible through Snapshot.
func (s *Store) Subscribe(fn func(domainauth.Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) emit(ev domainauth.Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(domainauth.Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
