package http

import (
	"github.com/nekogravitycat/smart-room-booking/internal/room"
)

type CreateBranchRequest struct {
	Name string `json:"name" binding:"required"`
}

type BranchResponse struct {
	Name      string `json:"name"`
	RoomCount int    `json:"room_count"`
}

func NewBranchResponse(b *room.Branch) BranchResponse {
	return BranchResponse{Name: b.Name, RoomCount: len(b.Rooms())}
}

type CreateRoomRequest struct {
	RoomID   string `json:"room_id" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

// AvailableRoomsRequest defines query parameters for the availability search.
type AvailableRoomsRequest struct {
	Type string `form:"type" binding:"required"`
	Date string `form:"date" binding:"required"`
	Time string `form:"time" binding:"required"`
}

type RoomResponse struct {
	ID       string `json:"id"`
	Branch   string `json:"branch"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

func NewRoomResponse(branch string, r *room.SmartRoom) RoomResponse {
	return RoomResponse{
		ID:       r.ID,
		Branch:   branch,
		Type:     string(r.Type),
		Capacity: r.Capacity,
	}
}

// DeleteResponse reports how many bookings a cascading delete removed.
type DeleteResponse struct {
	RemovedBookings int `json:"removed_bookings"`
}
