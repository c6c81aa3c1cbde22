package room

import (
	"strings"
	"sync"

	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

// Branch is a building owning an ordered set of rooms.
type Branch struct {
	Name string

	mu      sync.RWMutex
	rooms   []*SmartRoom
	removed bool
}

// NewBranch creates an empty branch.
func NewBranch(name string) (*Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyBranchName
	}
	if !validField(name) {
		return nil, ErrInvalidFieldChar
	}
	return &Branch{Name: name}, nil
}

// AddRoom appends a room, keeping room ids unique within the branch.
// A branch already removed from its registry takes no new rooms.
func (b *Branch) AddRoom(r *SmartRoom) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removed {
		return ErrBranchNotFound
	}
	for _, existing := range b.rooms {
		if existing.ID == r.ID {
			return ErrDuplicateRoom
		}
	}
	b.rooms = append(b.rooms, r)
	return nil
}

// Removed reports whether the branch has been deleted from its registry.
func (b *Branch) Removed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.removed
}

func (b *Branch) markRemoved() {
	b.mu.Lock()
	b.removed = true
	b.mu.Unlock()
}

// DeleteRoom removes the room with the given id and reports whether it existed.
// Bookings referencing the room are not touched here; see booking.Manager.DeleteRoom.
func (b *Branch) DeleteRoom(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.rooms {
		if r.ID == id {
			b.rooms = append(b.rooms[:i], b.rooms[i+1:]...)
			return true
		}
	}
	return false
}

// GetRoomByID returns the room with the given id.
func (b *Branch) GetRoomByID(id string) (*SmartRoom, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrRoomNotFound
}

// Rooms returns the rooms in insertion order.
func (b *Branch) Rooms() []*SmartRoom {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*SmartRoom, len(b.rooms))
	copy(out, b.rooms)
	return out
}

// GetAvailableRooms returns, in insertion order, the rooms of the given type
// that have no commitment for the slot. The result may be empty.
func (b *Branch) GetAvailableRooms(t Type, slot schedule.Slot) []*SmartRoom {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*SmartRoom
	for _, r := range b.rooms {
		if r.Type == t && r.Schedule.IsAvailable(slot) {
			out = append(out, r)
		}
	}
	return out
}
