package reconciler

import (
	"sync"

	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// StatusChangeSink is a multi-producer, multi-consumer broadcaster for
// observed batch status transitions, modeled on the teacher's
// mutex-protected map-of-entries shape (preconf/fifo_tx_set.go) rather
// than on event.Feed: a full or absent subscriber must never stall the
// reconciler loop, so delivery is always a non-blocking send and a
// dropped send is tolerated, per spec.md §9.
type StatusChangeSink struct {
	mu   sync.Mutex
	subs map[int]chan rolluptypes.StatusChanges
	next int
}

func NewStatusChangeSink() *StatusChangeSink {
	return &StatusChangeSink{subs: make(map[int]chan rolluptypes.StatusChanges)}
}

// Subscribe registers a new observer with the given channel buffer and
// returns its channel plus an unsubscribe func.
func (s *StatusChangeSink) Subscribe(buffer int) (<-chan rolluptypes.StatusChanges, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan rolluptypes.StatusChanges, buffer)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// emit delivers changes to every current subscriber, dropping it for any
// subscriber whose buffer is full.
func (s *StatusChangeSink) emit(changes rolluptypes.StatusChanges) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- changes:
		default:
		}
	}
}
