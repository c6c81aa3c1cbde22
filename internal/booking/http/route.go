package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	g.GET("/me/bookings", authMiddleware, h.Mine)
	g.POST("/passes/verify", authMiddleware, adminMiddleware, h.VerifyPass)

	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", adminMiddleware, h.List)
		group.GET("/:id", h.Get)
		group.GET("/:id/pass", h.Pass)
		group.POST("", h.Create)
		group.DELETE("/:id", h.Delete)
	}
}
