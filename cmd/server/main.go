// Package main is the entry point for the room scheduling server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/room-scheduler/backend/internal/api"
	"github.com/room-scheduler/backend/internal/config"
	"github.com/room-scheduler/backend/internal/event"
	"github.com/room-scheduler/backend/internal/schedule"
	"github.com/room-scheduler/backend/internal/storage"
	"github.com/room-scheduler/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "/data/config.yaml", "Path to YAML configuration file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	if cfg.JWTSecret == "" {
		log.Fatal("No JWT secret configured; set jwt_secret in the config file or the JWT_SECRET environment variable")
	}

	log.Printf("Starting room scheduler (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", cfg.DataDir, err)
	}
	dbPath := cfg.DataDir + "/room-scheduler.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	roomRepo := storage.NewRoomRepository(db)
	eventRepo := storage.NewEventRepository(db)
	settingsRepo := storage.NewSettingsRepository(db)

	// Initialize services
	expander := schedule.NewExpander(cfg.MaxOccurrences)
	svc := event.NewService(db, eventRepo, roomRepo, settingsRepo, expander, hub, cfg.HorizonDays)

	// Initialize and start the instance materializer
	materializer := event.NewMaterializer(eventRepo, expander, hub, cfg.HorizonDays)
	materializeScheduler := event.NewMaterializeScheduler(materializer)
	materializeScheduler.Start(context.Background())

	// Initialize HTTP router with services
	router := api.NewRouter(api.Deps{
		DB:       db,
		Rooms:    roomRepo,
		Events:   eventRepo,
		Settings: settingsRepo,
		Service:  svc,
		Hub:      hub,
		Config:   cfg,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop schedulers
	materializeScheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
