package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rebecca-roussel/ecoride/internal/config"
	"github.com/rebecca-roussel/ecoride/internal/database"
	"github.com/rebecca-roussel/ecoride/internal/handlers"
	"github.com/rebecca-roussel/ecoride/internal/metrics"
	"github.com/rebecca-roussel/ecoride/internal/repositories/postgres"
	"github.com/rebecca-roussel/ecoride/internal/services"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
	"github.com/rebecca-roussel/ecoride/pkg/utils"
)

func main() {
	// A missing .env is fine in containers where the environment is set.
	_ = godotenv.Load()

	cfg := config.Load()
	appLog, err := logger.New(&logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if cfg.Security.JWTSecret == "" {
		appLog.Fatal("JWT_SECRET must be set")
	}
	if cfg.Database.AdminPassword == "" {
		appLog.Warn("ADMIN_PASSWORD not set, no administrator will be seeded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	store := postgres.New(db)
	m := metrics.New()

	// Redis is optional: it backs the geocoding cache and the ride update
	// channel.
	var (
		cache     services.Cache
		publisher services.RidePublisher
	)
	if cfg.Redis.URL != "" {
		client, err := services.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			appLog.WithError(err).Warn("Redis unavailable, continuing without cache and pub/sub")
		} else {
			defer client.Close()
			cache = services.NewRedisCache(client)
			publisher = services.NewRideUpdatePublisher(client)
		}
	}

	var journal services.Journal = services.NewLogJournal(appLog)
	if cfg.Mongo.URI != "" {
		mongoJournal, err := services.NewMongoJournal(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			appLog.WithError(err).Warn("MongoDB unavailable, journal goes to the log")
		} else {
			journal = mongoJournal
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := mongoJournal.Close(closeCtx); err != nil {
					appLog.WithError(err).Warn("Failed to close MongoDB journal")
				}
			}()
		}
	}

	photos, err := services.NewPhotoStorage(cfg.Storage, cfg.App.BaseURL, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize storage")
	}

	var (
		rideMailer  services.RideMailer
		resetMailer services.ResetMailer
	)
	mailer := utils.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password, cfg.App.BaseURL)
	if mailer.Configured() {
		rideMailer, resetMailer = mailer, mailer
	} else {
		appLog.Warn("SMTP not configured, emails are disabled")
	}

	var geocoder services.Geocoder
	if cfg.Maps.APIKey != "" {
		google, err := services.NewGoogleGeocoder(cfg.Maps.APIKey, cfg.Maps.Region, cache, cfg.Maps.CacheTTL, appLog)
		if err != nil {
			appLog.WithError(err).Warn("Geocoding disabled")
		} else {
			geocoder = google
		}
	}

	hub := services.NewHub(cfg.Security.CORSAllowedOrigins, appLog)
	go hub.Run(ctx)

	deps := services.Deps{
		Store:    store,
		Notifier: services.NewFanOutNotifier(rideMailer, hub, publisher, m, appLog),
		Journal:  journal,
		Metrics:  m,
		Logger:   appLog,
	}
	commission := cfg.Rules.CommissionCredits

	uploadDir := cfg.Storage.UploadDir
	if photos.UsesS3() {
		uploadDir = ""
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret:      cfg.Security.JWTSecret,
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
		UploadDir:      uploadDir,
		Logger:         appLog,
		Metrics:        m,
	}, handlers.Services{
		Accounts:   services.NewAccountService(deps, store, store, photos, resetMailer, cfg.Security, cfg.Rules),
		Vehicles:   services.NewVehicleService(deps, store, store),
		Rides:      services.NewRideService(deps, store, store, store, geocoder, commission),
		Bookings:   services.NewBookingService(deps, store),
		Lifecycle:  services.NewLifecycleService(deps),
		Reviews:    services.NewReviewService(deps, store, store, commission),
		Moderation: services.NewModerationService(deps, store, store),
		Geocoder:   geocoder,
		Hub:        hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithField("port", cfg.App.Port).Infof("%s API listening", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Graceful shutdown failed")
	}
}
