package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saya/booking-api/internal/config"
	"github.com/saya/booking-api/internal/domain/booking"
	"github.com/saya/booking-api/internal/middleware"
	"github.com/saya/booking-api/internal/pkg/database"
	"github.com/saya/booking-api/internal/pkg/jwt"
	"github.com/saya/booking-api/internal/pkg/logger"
	"github.com/saya/booking-api/internal/pkg/mailer"
	"github.com/saya/booking-api/internal/pkg/resortapi"
	pkgresponse "github.com/saya/booking-api/internal/pkg/response"
)

const userAgent = "booking-api/1.0"

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting booking API")

	if cfg.IsProduction() && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Booking ----------
	var sessions booking.SessionStore
	if redis != nil {
		sessions = booking.NewRedisSessionStore(redis, cfg.SessionTTL)
	} else {
		sessions = booking.NewMemorySessionStore(cfg.SessionTTL)
	}

	var attempts booking.AttemptRepository
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := booking.EnsureAttemptsSchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare reservation_attempts table")
		}
		cancel()
		attempts = booking.NewAttemptRepository(db)
	}

	resortClient := resortapi.NewClient(
		cfg.ResortAPIBaseURL,
		time.Duration(cfg.ResortAPITimeoutSeconds)*time.Second,
		userAgent,
	)
	mailClient := mailer.NewClient(cfg.EmailAPIBase, cfg.ReservationNotificationTimeout)

	orchestrator := booking.NewOrchestrator(resortClient, mailClient, booking.NotificationSettings{
		BCC:               cfg.ReservationEmailsBCC(),
		SuccessTemplateID: cfg.ReservationSuccessTemplateID,
		FailTemplateID:    cfg.ReservationFailTemplateID,
		SupportContactURL: cfg.SupportContactURL,
	})
	bookingService := booking.NewService(sessions, resortClient, orchestrator, attempts)
	bookingHandler := booking.NewHandler(bookingService)

	guestAuth := middleware.GuestAuth(jwtService)

	// ---------- Router ----------
	r := newRouter(cfg, func(r chi.Router) {
		r.Mount("/bookings", bookingHandler.Routes(guestAuth))
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// submissions call the resort and mail APIs in sequence
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.ResortAPITimeoutSeconds)*time.Second + cfg.ReservationNotificationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newRouter builds the root router with the shared middleware stack and
// mounts the API routes registered by mountAPI under /api/v1.
func newRouter(cfg *config.Config, mountAPI func(r chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})
		mountAPI(r)
	})

	return r
}
