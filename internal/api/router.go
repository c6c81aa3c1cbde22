package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/smart-room-booking/internal/auth"
	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	bookingHttp "github.com/nekogravitycat/smart-room-booking/internal/booking/http"
	"github.com/nekogravitycat/smart-room-booking/internal/event"
	"github.com/nekogravitycat/smart-room-booking/internal/pass"
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	roomHttp "github.com/nekogravitycat/smart-room-booking/internal/room/http"
	"github.com/nekogravitycat/smart-room-booking/internal/snapshot"
	"github.com/nekogravitycat/smart-room-booking/internal/user"
	userHttp "github.com/nekogravitycat/smart-room-booking/internal/user/http"
)

// Config holds what the router needs to build its handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService user.Service
	Registry    *room.Registry
	Manager     *booking.Manager
	Snapshot    *snapshot.Snapshot
	JWTManager  *auth.JWTManager
	Publisher   event.Publisher
	PassSigner  *pass.Signer

	// AuthRatePerMinute and AuthRateBurst throttle /auth per client IP.
	// A rate of zero disables throttling.
	AuthRatePerMinute int
	AuthRateBurst     int
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers the routes of each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is an admin.
	adminMiddleware := RequireAdmin(cfg.UserService)
	// authLimiter: Throttles login and registration attempts per client IP.
	authLimiter := NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst).Middleware()

	// Initialize HTTP Handlers for each module.
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager, cfg.Manager, cfg.Snapshot)
	roomHandler := roomHttp.NewHandler(cfg.Registry, cfg.Manager, cfg.Snapshot)
	bookingHandler := bookingHttp.NewHandler(cfg.Manager, cfg.Registry, cfg.UserService, cfg.Snapshot, cfg.Publisher, cfg.PassSigner)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware, authLimiter)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
	}

	return r
}

// allowedOrigins returns the production origin list, or the local dev origins.
func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
