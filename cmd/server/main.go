package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/smart-room-booking/internal/app"
	"github.com/nekogravitycat/smart-room-booking/internal/config"
	"github.com/nekogravitycat/smart-room-booking/internal/db"
	"github.com/nekogravitycat/smart-room-booking/internal/event"
	"github.com/nekogravitycat/smart-room-booking/internal/store"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Open storage
	var st store.Store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatalf("failed to connect to db: %v", err)
		}
		defer pool.Close()

		pgStore := store.NewPgxStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate db: %v", err)
		}
		st = pgStore
	default:
		fileStore, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("failed to open data dir: %v", err)
		}
		st = fileStore
	}

	// Connect event broker
	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect event broker: %v", err)
	}
	defer publisher.Close()

	// Init components
	container := app.NewContainer(app.Config{
		IsProduction:         cfg.IsProduction,
		ProdOrigins:          cfg.ProdOrigins,
		Store:                st,
		JWTSecret:            cfg.JWTSecret,
		JWTTTL:               cfg.JWTAccessTokenTTL,
		BcryptCost:           cfg.BcryptCost,
		DefaultAdminPassword: cfg.DefaultAdminPassword,
		Publisher:            publisher,
		PassSecret:           cfg.PassSecret,
		AuthRatePerMinute:    cfg.AuthRatePerMinute,
		AuthRateBurst:        cfg.AuthRateBurst,
	})

	// Restore state
	if _, err := container.Bootstrap(ctx); err != nil {
		log.Fatalf("failed to restore state: %v", err)
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s (storage: %s)", cfg.HTTPAddr, cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	// Every mutation is persisted as it happens; this final write covers any
	// save that failed along the way.
	if err := container.Snapshot.SaveAll(shutdownCtx); err != nil {
		log.Printf("final save failed: %v", err)
	}

	log.Println("server exited gracefully")
}

// newPublisher connects the booking event publisher chosen by EVENTS_DRIVER.
func newPublisher(ctx context.Context, cfg *config.Config) (event.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsAMQP:
		return event.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsTopic)
	case config.EventsRedis:
		return event.NewRedisPublisher(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.EventsTopic)
	default:
		return event.NopPublisher{}, nil
	}
}
