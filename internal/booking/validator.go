package booking

import (
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

const (
	OpeningMinute = 8 * 60
	ClosingMinute = 20 * 60
)

// IsValidBookingTime reports whether the slot starts between 08:00 and 20:00 inclusive.
func IsValidBookingTime(slot schedule.Slot) bool {
	m := slot.Minutes()
	return m >= OpeningMinute && m <= ClosingMinute
}

// IsRoomAvailable reports whether the room has no commitment for the slot.
func IsRoomAvailable(r *room.SmartRoom, slot schedule.Slot) bool {
	return r.Schedule.IsAvailable(slot)
}

// IsValidCapacity reports whether the room seats at least required people.
func IsValidCapacity(r *room.SmartRoom, required int) bool {
	return r.Capacity >= required
}

// Validator bundles the booking rules that depend on the current date.
type Validator struct {
	clock Clock
}

func NewValidator(clock Clock) *Validator {
	if clock == nil {
		clock = RealClock{}
	}
	return &Validator{clock: clock}
}

// IsValidBookingDate reports whether the slot's date is today or later.
func (v *Validator) IsValidBookingDate(slot schedule.Slot) bool {
	today := v.clock.Now().Format(schedule.DateLayout)
	return slot.Date >= today
}

// Check runs every rule in order and returns the first failure, or nil.
func (v *Validator) Check(r *room.SmartRoom, slot schedule.Slot, required int) error {
	if !IsValidBookingTime(slot) {
		return reject(ReasonInvalidTime, ErrInvalidTime)
	}
	if !v.IsValidBookingDate(slot) {
		return reject(ReasonInvalidDate, ErrInvalidDate)
	}
	if !IsRoomAvailable(r, slot) {
		return reject(ReasonRoomUnavailable, ErrRoomUnavailable)
	}
	if !IsValidCapacity(r, required) {
		return reject(ReasonInsufficientCapacity, ErrInsufficientCapacity)
	}
	return nil
}
