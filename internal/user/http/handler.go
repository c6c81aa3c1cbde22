package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/smart-room-booking/internal/auth"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/request"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/response"
	"github.com/nekogravitycat/smart-room-booking/internal/user"
)

// Persister writes the user set, and the bookings a deletion cascades to, to storage.
type Persister interface {
	SaveUsers(ctx context.Context) error
	SaveBookings(ctx context.Context) error
}

// BookingRemover drops the bookings of a deleted customer.
type BookingRemover interface {
	DeleteBookingsByCustomer(customerID string) int
}

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
	bookings    BookingRemover
	persister   Persister
}

func NewHandler(userService user.Service, jwtManager *auth.JWTManager, bookings BookingRemover, persister Persister) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
		bookings:    bookings,
		persister:   persister,
	}
}

// Register creates a customer account and returns its generated id.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Register(req.Name, user.RoleCustomer, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.save(c.Request.Context())

	c.JSON(http.StatusCreated, MeResponse{User: NewUserResponse(u)})
}

// Login authenticates with user id, name and password.
// On success, it returns a JWT access token and the user profile.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Login(req.UserID, req.Name, req.Password)
	if err != nil {
		// For security reasons, do not reveal which field was wrong
		c.JSON(http.StatusUnauthorized, gin.H{"error": user.ErrInvalidCredentials.Error()})
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		User:        NewUserResponse(u),
	})
}

// Me returns the profile of the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetByID(auth.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

func (h *UserHandler) List(c *gin.Context) {
	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	users, total := response.Paginate(h.userService.List(), req.Page, req.PageSize)
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Register(req.Name, user.ParseRole(req.Role), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.save(c.Request.Context())

	c.JSON(http.StatusCreated, NewUserResponse(u))
}

// Delete removes a user together with the bookings they made.
// The user's id is never issued again.
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	found, err := h.userService.Delete(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, user.ErrNotFound)
		return
	}
	h.save(c.Request.Context())
	if removed := h.bookings.DeleteBookingsByCustomer(id); removed > 0 {
		log.Printf("user %s deleted with %d booking(s)", id, removed)
		if err := h.persister.SaveBookings(c.Request.Context()); err != nil {
			log.Printf("failed to save bookings: %v", err)
		}
	}

	c.Status(http.StatusNoContent)
}

// save persists users; a failure is logged and the in-memory change stands.
func (h *UserHandler) save(ctx context.Context) {
	if err := h.persister.SaveUsers(ctx); err != nil {
		log.Printf("failed to save users: %v", err)
	}
}
