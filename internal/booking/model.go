package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/smart-room-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidTime          = apperror.New(http.StatusBadRequest, "booking time must be between 08:00 and 20:00")
	ErrInvalidDate          = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrRoomUnavailable      = apperror.New(http.StatusConflict, "room is not available at the requested date and time")
	ErrInsufficientCapacity = apperror.New(http.StatusBadRequest, "room capacity is insufficient")
	ErrInvalidInput         = apperror.New(http.StatusBadRequest, "invalid input parameters")
	ErrDuplicateID          = apperror.New(http.StatusConflict, "booking id already exists")
	ErrDuplicateSlot        = apperror.New(http.StatusConflict, "slot is already held by another booking")
	ErrPermissionDenied     = apperror.New(http.StatusForbidden, "permission denied")
)

// Reason names the validation rule a rejected booking failed.
type Reason string

const (
	ReasonInvalidTime          Reason = "invalid_time"
	ReasonInvalidDate          Reason = "invalid_date"
	ReasonRoomUnavailable      Reason = "room_unavailable"
	ReasonInsufficientCapacity Reason = "insufficient_capacity"
)

// RejectedError is returned by Manager.CreateBooking when a validation rule fails.
// It unwraps to the matching sentinel (ErrInvalidTime, ErrRoomUnavailable, ...).
type RejectedError struct {
	Reason Reason
	err    *apperror.AppError
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.err.Message)
}

func (e *RejectedError) Unwrap() error {
	return e.err
}

func reject(reason Reason, err *apperror.AppError) *RejectedError {
	return &RejectedError{Reason: reason, err: err}
}

// Clock supplies the current time; tests pin it.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Customer is the identity a booking is attributed to.
type Customer struct {
	ID   string
	Name string
}

// Booking is a committed reservation of one room's slot.
// Branch and Room are non-owning references. The Manager hands out copies;
// changing a returned Booking does not change the stored one.
type Booking struct {
	ID       string
	Customer Customer
	Branch   *room.Branch
	Room     *room.SmartRoom
	Slot     schedule.Slot
}

func (b *Booking) clone() *Booking {
	cp := *b
	return &cp
}

// CreateRequest carries the inputs of Manager.CreateBooking.
type CreateRequest struct {
	Customer Customer
	Branch   *room.Branch
	Room     *room.SmartRoom
	Slot     schedule.Slot
	// PartySize is the number of attendees; zero means 1.
	PartySize int
}
