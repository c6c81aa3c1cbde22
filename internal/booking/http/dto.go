package http

import (
	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/request"
)

// CreateBookingRequest is the body of POST /v1/bookings.
type CreateBookingRequest struct {
	Branch    string `json:"branch" binding:"required"`
	RoomID    string `json:"room_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	PartySize int    `json:"party_size" binding:"omitempty,min=1"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	CustomerName string `form:"customer_name"`
}

// PassRequest defines query parameters for GET /v1/bookings/:id/pass.
type PassRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=png pdf"`
	Size   int    `form:"size" binding:"omitempty,min=64,max=1024"`
}

// Normalize fills in defaults for unset pass options.
func (r *PassRequest) Normalize() {
	if r.Format == "" {
		r.Format = "png"
	}
	if r.Size == 0 {
		r.Size = 256
	}
}

type VerifyPassRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type VerifyPassResponse struct {
	Valid   bool             `json:"valid"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

type CustomerTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomTag struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type BookingResponse struct {
	ID       string      `json:"id"`
	Customer CustomerTag `json:"customer"`
	Branch   string      `json:"branch"`
	Room     RoomTag     `json:"room"`
	Date     string      `json:"date"`
	Time     string      `json:"time"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID,
		Customer: CustomerTag{
			ID:   b.Customer.ID,
			Name: b.Customer.Name,
		},
		Branch: b.Branch.Name,
		Room: RoomTag{
			ID:   b.Room.ID,
			Type: string(b.Room.Type),
		},
		Date: b.Slot.Date,
		Time: b.Slot.Time,
	}
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}
