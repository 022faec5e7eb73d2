package reconciler

import (
	"sync"

	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// State holds {last_committed, last_proven, last_executed}, owned
// exclusively by the reconciler task; no external mutation. The
// reconciler keeps last_executed <= last_proven <= last_committed: apply
// checks each transition's ordering before calling update. State itself
// does not validate the values it is given.
type State struct {
	mu        sync.RWMutex
	committed rolluptypes.L1BatchNumber
	proven    rolluptypes.L1BatchNumber
	executed  rolluptypes.L1BatchNumber
}

// NewState initializes reconciler state from storage at task startup.
func NewState(committed, proven, executed rolluptypes.L1BatchNumber) *State {
	return &State{committed: committed, proven: proven, executed: executed}
}

// Snapshot returns the current {committed, proven, executed} triple.
func (s *State) Snapshot() (committed, proven, executed rolluptypes.L1BatchNumber) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed, s.proven, s.executed
}

// update advances the state after a cycle's changes have committed to
// storage. Called only from apply, after the storage transaction commits.
func (s *State) update(committed, proven, executed rolluptypes.L1BatchNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = committed
	s.proven = proven
	s.executed = executed
}
