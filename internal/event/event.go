// Package event publishes booking lifecycle notifications to a broker.
// Publishing is best effort: callers log failures and carry on.
package event

import (
	"context"
	"time"

	"github.com/nekogravitycat/smart-room-booking/internal/booking"
)

type Type string

const (
	TypeBookingCreated   Type = "booking.created"
	TypeBookingCancelled Type = "booking.cancelled"
)

// Event is the JSON body sent to the broker.
type Event struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	Branch     string    `json:"branch"`
	RoomID     string    `json:"room_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	At         time.Time `json:"at"`
}

func New(t Type, b *booking.Booking) Event {
	return Event{
		Type:       t,
		BookingID:  b.ID,
		CustomerID: b.Customer.ID,
		Branch:     b.Branch.Name,
		RoomID:     b.Room.ID,
		Date:       b.Slot.Date,
		Time:       b.Slot.Time,
		At:         time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
