package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/smart-room-booking/internal/api"
	"github.com/nekogravitycat/smart-room-booking/internal/auth"
	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	"github.com/nekogravitycat/smart-room-booking/internal/event"
	"github.com/nekogravitycat/smart-room-booking/internal/pass"
	"github.com/nekogravitycat/smart-room-booking/internal/room"
	"github.com/nekogravitycat/smart-room-booking/internal/snapshot"
	"github.com/nekogravitycat/smart-room-booking/internal/store"
	"github.com/nekogravitycat/smart-room-booking/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Store        store.Store
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	// DefaultAdminPassword is set on the A000 admin when it has to be seeded.
	DefaultAdminPassword string
	// Clock decides what "today" is for booking validation; nil means the wall clock.
	Clock booking.Clock
	// Publisher receives booking events; nil drops them.
	Publisher event.Publisher
	// PassSecret signs booking passes; empty falls back to JWTSecret.
	PassSecret string

	AuthRatePerMinute int
	AuthRateBurst     int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	UserService user.Service
	Registry    *room.Registry
	Manager     *booking.Manager
	Snapshot    *snapshot.Snapshot

	defaultAdminPassword string
}

// NewContainer initializes all modules and returns the container.
// State is empty until Bootstrap is called.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userService := user.NewService(passwordHasher)

	// Room Module
	registry := room.NewRegistry()

	// Booking Module
	manager := booking.NewManager(booking.NewValidator(cfg.Clock))

	// Persistence
	snap := snapshot.New(cfg.Store, userService, registry, manager)

	// Booking passes
	passSecret := cfg.PassSecret
	if passSecret == "" {
		passSecret = cfg.JWTSecret
	}

	// Router
	router := api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		UserService:  userService,
		Registry:     registry,
		Manager:      manager,
		Snapshot:     snap,
		JWTManager:   jwtManager,
		Publisher:    cfg.Publisher,
		PassSigner:   pass.NewSigner(passSecret),

		AuthRatePerMinute: cfg.AuthRatePerMinute,
		AuthRateBurst:     cfg.AuthRateBurst,
	})

	return &Container{
		Router:               router,
		JWTManager:           jwtManager,
		UserService:          userService,
		Registry:             registry,
		Manager:              manager,
		Snapshot:             snap,
		defaultAdminPassword: cfg.DefaultAdminPassword,
	}
}

// Bootstrap restores persisted state and seeds the default admin if it is missing.
func (c *Container) Bootstrap(ctx context.Context) (snapshot.Report, error) {
	rep, err := c.Snapshot.Load(ctx)
	if err != nil {
		return rep, fmt.Errorf("load snapshot: %w", err)
	}
	log.Printf("restored %d users, %d rooms, %d bookings (%d records skipped)",
		rep.Users, rep.Rooms, rep.Bookings, rep.Skipped)

	created, err := c.UserService.EnsureDefaultAdmin(c.defaultAdminPassword)
	if err != nil {
		return rep, fmt.Errorf("seed default admin: %w", err)
	}
	if created {
		log.Printf("seeded default admin %s", user.DefaultAdminID)
		if err := c.Snapshot.SaveUsers(ctx); err != nil {
			return rep, fmt.Errorf("save users: %w", err)
		}
	}
	return rep, nil
}
