package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chachabrian/staybook-backend/internal/config"
	"github.com/chachabrian/staybook-backend/internal/database"
	"github.com/chachabrian/staybook-backend/internal/handlers"
	"github.com/chachabrian/staybook-backend/internal/middleware"
	"github.com/chachabrian/staybook-backend/internal/repository"
	"github.com/chachabrian/staybook-backend/internal/services"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := cfg.NewLogger()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(db)
	houseRepo := repository.NewHouseRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// WebSocket hub for live booking updates
	hub := services.NewHub(log)
	go hub.Run(ctx)

	var (
		bookingNotifiers services.BookingNotifiers
		houseNotifiers   services.HouseNotifiers
		audit            handlers.AuditLog
	)

	// Redis is optional: it backs the geocode cache and carries booking
	// events between instances. Without it the hub is notified directly.
	var geocoder services.Geocoder = services.NewMapQuestGeocoder(cfg.GeocoderURL, cfg.GeocoderAPIKey)
	if cfg.RedisURL != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer rdb.Close()

		geocoder = services.NewCachedGeocoder(geocoder, rdb, cfg.GeocodeTTL, log)
		bookingNotifiers = append(bookingNotifiers, services.NewRedisPublisher(rdb))
		go services.RelayBookingEvents(ctx, rdb, hub, log)
		log.Info("Redis connected")
	} else {
		geocoder = services.NewCachedGeocoder(geocoder, nil, cfg.GeocodeTTL, log)
		bookingNotifiers = append(bookingNotifiers, hub)
		log.Warn("REDIS_URL not set, booking events stay on this instance")
	}

	if cfg.MongoURI != "" {
		client, err := services.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())

		trail := services.NewAuditTrail(client, cfg.MongoDB)
		bookingNotifiers = append(bookingNotifiers, trail)
		houseNotifiers = append(houseNotifiers, trail)
		audit = trail
		log.WithField("database", cfg.MongoDB).Info("Audit trail enabled")
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := services.NewHousePublisher(cfg.RabbitMQURL, cfg.HouseQueue)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ: %v", err)
		}
		defer publisher.Close()

		houseNotifiers = append(houseNotifiers, publisher)
		log.WithField("queue", cfg.HouseQueue).Info("House events publishing enabled")
	}

	// Initialize storage (S3 or local fallback)
	photos, err := services.NewPhotoStore(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	deps := handlers.Dependencies{
		Tokens:   tokens,
		Accounts: services.NewAccountService(users, tokens),
		Houses:   services.NewHouseService(houseRepo, geocoder, photos, houseNotifiers, cfg.MaxUpload, log),
		Bookings: services.NewBookingService(houseRepo, bookingRepo, bookingNotifiers, log),
		Hub:      hub,
		Audit:    audit,
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	if local, ok := photos.(*services.LocalPhotoStore); ok {
		r.Static("/uploads", local.Dir())
	}

	handlers.RegisterRoutes(r.Group("/api"), deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
