package schedule

import (
	"sort"
	"sync"
)

// Schedule is the ledger of slots a single room has committed.
// It holds at most one entry per slot. It does not detect conflicts on its own:
// callers check IsAvailable and Reserve under their own writer lock.
type Schedule struct {
	mu    sync.RWMutex
	slots map[Slot]struct{}
}

func New() *Schedule {
	return &Schedule{slots: make(map[Slot]struct{})}
}

// IsAvailable reports whether no commitment exists for the slot.
func (s *Schedule) IsAvailable(slot Slot) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.slots[slot]
	return !taken
}

// Reserve records a commitment for the slot.
// It returns false if the slot was already committed, in which case nothing changes.
func (s *Schedule) Reserve(slot Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.slots[slot]; taken {
		return false
	}
	s.slots[slot] = struct{}{}
	return true
}

// Release removes the commitment for the slot. Releasing a free slot is a no-op.
func (s *Schedule) Release(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, slot)
}

// Slots returns the committed slots in chronological order.
func (s *Schedule) Slots() []Slot {
	s.mu.RLock()
	out := make([]Slot, 0, len(s.slots))
	for slot := range s.slots {
		out = append(out, slot)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Len returns the number of committed slots.
func (s *Schedule) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
