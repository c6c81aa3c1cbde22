package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers branch and room routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/branches")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.ListBranches)                    // List branches
		group.GET("/:name/rooms", h.ListRooms)           // List rooms of a branch
		group.GET("/:name/available-rooms", h.Available) // Free rooms for a slot
	}

	// === Admin Routes ===
	admin := group.Group("", adminMiddleware)
	{
		admin.POST("", h.CreateBranch)
		admin.DELETE("/:name", h.DeleteBranch)
		admin.POST("/:name/rooms", h.CreateRoom)
		admin.DELETE("/:name/rooms/:roomId", h.DeleteRoom)
	}
}
