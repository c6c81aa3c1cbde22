package booking

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

const (
	idPrefix = "B"
	// maxSeq bounds the numeric suffix adopted from restored ids.
	maxSeq = 999_999_999
)

type slotKey struct {
	room *room.SmartRoom
	slot schedule.Slot
}

// Manager is the booking engine. It owns the set of live bookings and is the
// only writer of room schedules, so the two never diverge.
//
// All mutations run under one writer lock: the validate-reserve-store sequence
// of CreateBooking and the release-remove sequence of DeleteBooking are atomic
// with respect to each other and to readers.
type Manager struct {
	mu        sync.RWMutex
	validator *Validator
	byID      map[string]*Booking
	bySlot    map[slotKey]string
	order     []string // creation order
	lastSeq   int
}

func NewManager(validator *Validator) *Manager {
	if validator == nil {
		validator = NewValidator(nil)
	}
	return &Manager{
		validator: validator,
		byID:      make(map[string]*Booking),
		bySlot:    make(map[slotKey]string),
	}
}

// CreateBooking validates the request, reserves the slot and stores the booking.
// On a rule violation it returns a *RejectedError and changes nothing. A room
// or branch removed after the caller resolved it is refused with
// room.ErrRoomNotFound or room.ErrBranchNotFound.
func (m *Manager) CreateBooking(req CreateRequest) (*Booking, error) {
	if req.Branch == nil || req.Room == nil || req.Customer.ID == "" {
		return nil, ErrInvalidInput
	}
	required := req.PartySize
	if required <= 0 {
		required = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := attached(req.Branch, req.Room); err != nil {
		return nil, err
	}
	if err := m.validator.Check(req.Room, req.Slot, required); err != nil {
		return nil, err
	}

	id := m.nextIDLocked()
	req.Room.Schedule.Reserve(req.Slot)

	b := &Booking{
		ID:       id,
		Customer: req.Customer,
		Branch:   req.Branch,
		Room:     req.Room,
		Slot:     req.Slot,
	}
	m.storeLocked(b)

	return b.clone(), nil
}

// DeleteBooking releases the booking's slot and removes it.
// It reports whether a booking with that id existed.
func (m *Manager) DeleteBooking(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.byID[id]
	if !ok {
		return false
	}
	m.removeLocked(b)
	return true
}

// GetBooking looks a booking up by id.
func (m *Manager) GetBooking(id string) (*Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

// GetBookingsByUserName returns, in creation order, the bookings whose customer
// display name equals name. Customers sharing a name see each other's bookings.
func (m *Manager) GetBookingsByUserName(name string) []*Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Booking
	for _, id := range m.order {
		if b := m.byID[id]; b.Customer.Name == name {
			out = append(out, b.clone())
		}
	}
	return out
}

// GetAllBookings returns every live booking in creation order.
func (m *Manager) GetAllBookings() []*Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Booking, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].clone())
	}
	return out
}

// Count returns the number of live bookings.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// ClearBookings empties the booking store without touching room schedules.
// It is meant to be followed by a full restore through AddBookingFromFile.
func (m *Manager) ClearBookings() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID = make(map[string]*Booking)
	m.bySlot = make(map[slotKey]string)
	m.order = nil
}

// AddBookingFromFile restores a previously persisted booking without running
// the validation rules. The slot is still reserved on the room so schedules
// and bookings stay in step. A record whose id or slot is already held by a
// live booking is refused with ErrDuplicateID or ErrDuplicateSlot.
func (m *Manager) AddBookingFromFile(id string, customer Customer, branch *room.Branch, r *room.SmartRoom, slot schedule.Slot) error {
	if id == "" || branch == nil || r == nil || customer.ID == "" {
		return ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := attached(branch, r); err != nil {
		return fmt.Errorf("restore %s: %w", id, err)
	}
	if _, exists := m.byID[id]; exists {
		return fmt.Errorf("restore %s: %w", id, ErrDuplicateID)
	}
	if holder, taken := m.bySlot[slotKey{room: r, slot: slot}]; taken {
		return fmt.Errorf("restore %s: room %s at %s held by %s: %w", id, r.ID, slot, holder, ErrDuplicateSlot)
	}

	// The slot may still be marked on the schedule after ClearBookings; adopt it.
	r.Schedule.Reserve(slot)

	b := &Booking{
		ID:       id,
		Customer: customer,
		Branch:   branch,
		Room:     r,
		Slot:     slot,
	}
	m.storeLocked(b)

	if seq, ok := parseSeq(id); ok && seq > m.lastSeq {
		m.lastSeq = seq
	}
	return nil
}

// AvailableRooms lists the branch's rooms of type t that are free at slot,
// observed under the manager's read lock.
func (m *Manager) AvailableRooms(branch *room.Branch, t room.Type, slot schedule.Slot) []*room.SmartRoom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return branch.GetAvailableRooms(t, slot)
}

// DeleteRoom removes a room from its branch together with every booking that
// references it. It returns the number of bookings removed and whether the
// room existed.
func (m *Manager) DeleteRoom(branch *room.Branch, roomID string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := branch.GetRoomByID(roomID)
	if err != nil {
		return 0, false
	}
	removed := m.removeWhereLocked(func(b *Booking) bool { return b.Room == r })
	branch.DeleteRoom(roomID)
	return removed, true
}

// DeleteBranch removes a branch from the registry together with every booking
// on any of its rooms. It returns the number of bookings removed and whether
// the branch existed.
func (m *Manager) DeleteBranch(registry *room.Registry, name string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	branch, err := registry.GetBranch(name)
	if err != nil {
		return 0, false
	}
	removed := m.removeWhereLocked(func(b *Booking) bool { return b.Branch == branch })
	registry.DeleteBranch(name)
	return removed, true
}

// DeleteBookingsByCustomer removes every booking made by the customer with the
// given id and returns how many were removed.
func (m *Manager) DeleteBookingsByCustomer(customerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeWhereLocked(func(b *Booking) bool { return b.Customer.ID == customerID })
}

// attached reports whether r is still a room of branch and branch is still registered.
func attached(branch *room.Branch, r *room.SmartRoom) error {
	if branch.Removed() {
		return room.ErrBranchNotFound
	}
	if current, err := branch.GetRoomByID(r.ID); err != nil || current != r {
		return room.ErrRoomNotFound
	}
	return nil
}

func (m *Manager) storeLocked(b *Booking) {
	m.byID[b.ID] = b
	m.bySlot[slotKey{room: b.Room, slot: b.Slot}] = b.ID
	m.order = append(m.order, b.ID)
}

func (m *Manager) removeLocked(b *Booking) {
	b.Room.Schedule.Release(b.Slot)
	delete(m.bySlot, slotKey{room: b.Room, slot: b.Slot})
	delete(m.byID, b.ID)
	for i, id := range m.order {
		if id == b.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Manager) removeWhereLocked(match func(*Booking) bool) int {
	var doomed []*Booking
	for _, id := range m.order {
		if b := m.byID[id]; match(b) {
			doomed = append(doomed, b)
		}
	}
	for _, b := range doomed {
		m.removeLocked(b)
	}
	return len(doomed)
}

// nextIDLocked issues the next id, skipping any id already in use.
func (m *Manager) nextIDLocked() string {
	for {
		m.lastSeq++
		id := fmt.Sprintf("%s%03d", idPrefix, m.lastSeq)
		if _, taken := m.byID[id]; !taken {
			return id
		}
	}
}

func parseSeq(id string) (int, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(idPrefix):])
	if err != nil || n < 0 || n > maxSeq {
		return 0, false
	}
	return n, true
}
