package main // Entry point package

import (
	"context" // Context for background workers
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/viaroute/seat-reservation/internal/booking"    // Booking finalizer
	"github.com/viaroute/seat-reservation/internal/config"     // Internal config loader
	"github.com/viaroute/seat-reservation/internal/database"   // MySQL connector
	"github.com/viaroute/seat-reservation/internal/handler"    // HTTP handlers
	"github.com/viaroute/seat-reservation/internal/hold"       // Hold manager
	"github.com/viaroute/seat-reservation/internal/middleware" // Session, rate limit, cache middleware
	"github.com/viaroute/seat-reservation/internal/occupancy"  // Seat occupancy index
	"github.com/viaroute/seat-reservation/internal/queue"      // Booking event consumer
	"github.com/viaroute/seat-reservation/internal/repository" // Data access layer
	"github.com/viaroute/seat-reservation/internal/router"     // Internal router setup
	"github.com/viaroute/seat-reservation/internal/service"    // RabbitMQ notifier
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared handle
	stopRepo := repository.NewStopRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	tripRepo := repository.NewTripRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	seatHoldRepo := repository.NewSeatHoldRepo(db)

	// The notifier broadcasts seat-map changes and confirmed bookings;
	// publish failures are logged by the services and never fail a request.
	notifier := service.NewNotifier()

	manager := hold.NewManager(db, seatHoldRepo, bookingRepo,
		hold.Config{TTL: cfg.HoldTTL, MaxSeats: cfg.HoldMaxSeats}, notifier, nil)
	finalizer := booking.NewFinalizer(db, seatHoldRepo, bookingRepo, notifier, nil)

	// Background workers: expired-hold hygiene sweep and the confirmed
	// booking log consumer.  Both run for the life of the process.
	ctx := context.Background()
	go manager.RunSweeper(ctx, cfg.SweepInterval)
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Anonymous sessions carry the opaque session_id threaded through
	// every hold and booking call.
	e.Use(middleware.Session(cfg.SessionSecret))

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterCatalog(e, handler.NewCatalogHandler(stopRepo, seatRepo), cached)
	router.RegisterFleet(e, handler.NewFleetHandler(seatRepo))
	occupancyIndex := occupancy.NewIndex(bookingRepo, seatHoldRepo, nil)
	router.RegisterReservation(e,
		handler.NewSeatMapHandler(tripRepo, stopRepo, seatRepo, bookingRepo, seatHoldRepo, occupancyIndex),
		handler.NewHoldHandler(tripRepo, stopRepo, seatRepo, manager),
		handler.NewBookingHandler(tripRepo, stopRepo, bookingRepo, finalizer),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
