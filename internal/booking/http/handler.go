package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/smart-room-booking/internal/auth"
	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	"github.com/nekogravitycat/smart-room-booking/internal/event"
	"github.com/nekogravitycat/smart-room-booking/internal/pass"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/request"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/response"
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
	"github.com/nekogravitycat/smart-room-booking/internal/user"
)

// Persister writes the booking set to storage.
type Persister interface {
	SaveBookings(ctx context.Context) error
}

type Handler struct {
	manager     *booking.Manager
	registry    *room.Registry
	userService user.Service
	persister   Persister
	publisher   event.Publisher
	signer      *pass.Signer
}

func NewHandler(
	manager *booking.Manager,
	registry *room.Registry,
	userService user.Service,
	persister Persister,
	publisher event.Publisher,
	signer *pass.Signer,
) *Handler {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Handler{
		manager:     manager,
		registry:    registry,
		userService: userService,
		persister:   persister,
		publisher:   publisher,
		signer:      signer,
	}
}

// currentUser loads the authenticated user, answering 401 if it no longer exists.
func (h *Handler) currentUser(c *gin.Context) (*user.User, bool) {
	u, err := h.userService.GetByID(auth.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	return u, true
}

// canAccess reports whether u may view or cancel b: admins see everything,
// customers only their own bookings.
func canAccess(u *user.User, b *booking.Booking) bool {
	return u.IsAdmin() || b.Customer.ID == u.ID
}

// Create books a room for the authenticated customer.
func (h *Handler) Create(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !u.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only customers can make bookings"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	branch, err := h.registry.GetBranch(req.Branch)
	if err != nil {
		response.Error(c, err)
		return
	}
	r, err := branch.GetRoomByID(req.RoomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	slot, err := schedule.ParseSlot(req.Date, req.Time)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.manager.CreateBooking(booking.CreateRequest{
		Customer:  booking.Customer{ID: u.ID, Name: u.Name},
		Branch:    branch,
		Room:      r,
		Slot:      slot,
		PartySize: req.PartySize,
	})
	if err != nil {
		var rejected *booking.RejectedError
		if errors.As(err, &rejected) {
			response.Rejected(c, err, string(rejected.Reason))
			return
		}
		response.Error(c, err)
		return
	}
	h.save(c.Request.Context())
	h.publish(c.Request.Context(), event.TypeBookingCreated, b)

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// List returns every booking, optionally narrowed to one customer name.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	var all []*booking.Booking
	if req.CustomerName != "" {
		all = h.manager.GetBookingsByUserName(req.CustomerName)
	} else {
		all = h.manager.GetAllBookings()
	}

	page, total := response.Paginate(all, req.Page, req.PageSize)
	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(page), req.Page, req.PageSize, total))
}

// Mine lists the bookings made under the authenticated user's display name.
func (h *Handler) Mine(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	page, total := response.Paginate(h.manager.GetBookingsByUserName(u.Name), req.Page, req.PageSize)
	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(page), req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}

	b, err := h.manager.GetBooking(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canAccess(u, b) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Delete cancels a booking and frees its slot.
func (h *Handler) Delete(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	b, err := h.manager.GetBooking(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canAccess(u, b) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	// A concurrent delete may have won the race since the lookup.
	if !h.manager.DeleteBooking(id) {
		response.Error(c, booking.ErrNotFound)
		return
	}
	h.save(c.Request.Context())
	h.publish(c.Request.Context(), event.TypeBookingCancelled, b)

	c.Status(http.StatusNoContent)
}

// Pass renders the signed booking pass as a QR code PNG or a printable PDF.
func (h *Handler) Pass(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req PassRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	b, err := h.manager.GetBooking(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canAccess(u, b) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	payload := h.signer.Payload(b)
	if req.Format == "pdf" {
		out, err := pass.PDF(b, payload)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=pass-"+b.ID+".pdf")
		c.Data(http.StatusOK, "application/pdf", out)
		return
	}

	out, err := pass.PNG(payload, req.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", out)
}

// VerifyPass checks a scanned pass against the live booking it names.
func (h *Handler) VerifyPass(c *gin.Context) {
	var req VerifyPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	claims, err := h.signer.Verify(req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Cancelled bookings no longer verify.
	b, err := h.manager.GetBooking(claims.BookingID)
	if err != nil || !claims.Matches(b) {
		c.JSON(http.StatusOK, VerifyPassResponse{Valid: false})
		return
	}

	resp := NewBookingResponse(b)
	c.JSON(http.StatusOK, VerifyPassResponse{Valid: true, Booking: &resp})
}

func (h *Handler) save(ctx context.Context) {
	if err := h.persister.SaveBookings(ctx); err != nil {
		log.Printf("failed to save bookings: %v", err)
	}
}

func (h *Handler) publish(ctx context.Context, t event.Type, b *booking.Booking) {
	if err := h.publisher.Publish(ctx, event.New(t, b)); err != nil {
		log.Printf("failed to publish %s for %s: %v", t, b.ID, err)
	}
}
