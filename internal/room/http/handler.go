package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/response"
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

// Persister writes rooms and bookings to storage.
type Persister interface {
	SaveRooms(ctx context.Context) error
	SaveBookings(ctx context.Context) error
}

type Handler struct {
	registry  *room.Registry
	manager   *booking.Manager
	persister Persister
}

func NewHandler(registry *room.Registry, manager *booking.Manager, persister Persister) *Handler {
	return &Handler{
		registry:  registry,
		manager:   manager,
		persister: persister,
	}
}

func (h *Handler) ListBranches(c *gin.Context) {
	branches := h.registry.Branches()
	items := make([]BranchResponse, len(branches))
	for i, b := range branches {
		items[i] = NewBranchResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, 1, len(items), len(items)))
}

func (h *Handler) CreateBranch(c *gin.Context) {
	var body CreateBranchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.registry.AddBranch(body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.saveRooms(c.Request.Context())

	c.JSON(http.StatusCreated, NewBranchResponse(b))
}

// DeleteBranch removes a branch, its rooms, and every booking on those rooms.
func (h *Handler) DeleteBranch(c *gin.Context) {
	removed, found := h.manager.DeleteBranch(h.registry, c.Param("name"))
	if !found {
		response.Error(c, room.ErrBranchNotFound)
		return
	}
	h.saveRooms(c.Request.Context())
	if removed > 0 {
		h.saveBookings(c.Request.Context())
	}

	c.JSON(http.StatusOK, DeleteResponse{RemovedBookings: removed})
}

func (h *Handler) ListRooms(c *gin.Context) {
	b, err := h.registry.GetBranch(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	rooms := b.Rooms()
	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(b.Name, r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, 1, len(items), len(items)))
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var body CreateRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.registry.GetBranch(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := room.New(body.RoomID, body.Type, body.Capacity)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := b.AddRoom(r); err != nil {
		response.Error(c, err)
		return
	}
	h.saveRooms(c.Request.Context())

	c.JSON(http.StatusCreated, NewRoomResponse(b.Name, r))
}

// DeleteRoom removes a room and every booking on it.
func (h *Handler) DeleteRoom(c *gin.Context) {
	b, err := h.registry.GetBranch(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	removed, found := h.manager.DeleteRoom(b, c.Param("roomId"))
	if !found {
		response.Error(c, room.ErrRoomNotFound)
		return
	}
	h.saveRooms(c.Request.Context())
	if removed > 0 {
		h.saveBookings(c.Request.Context())
	}

	c.JSON(http.StatusOK, DeleteResponse{RemovedBookings: removed})
}

// Available lists the branch's rooms of a type that are free at a date and time.
func (h *Handler) Available(c *gin.Context) {
	var req AvailableRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	b, err := h.registry.GetBranch(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := room.ParseType(req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	slot, err := schedule.ParseSlot(req.Date, req.Time)
	if err != nil {
		response.Error(c, err)
		return
	}

	rooms := h.manager.AvailableRooms(b, t, slot)
	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(b.Name, r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, 1, len(items), len(items)))
}

func (h *Handler) saveRooms(ctx context.Context) {
	if err := h.persister.SaveRooms(ctx); err != nil {
		log.Printf("failed to save rooms: %v", err)
	}
}

func (h *Handler) saveBookings(ctx context.Context) {
	if err := h.persister.SaveBookings(ctx); err != nil {
		log.Printf("failed to save bookings: %v", err)
	}
}
