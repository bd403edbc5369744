package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"coursescheduler/config"
	_ "coursescheduler/docs"
	"coursescheduler/internal/adapters/auth"
	httpdelivery "coursescheduler/internal/delivery/http"
	"coursescheduler/internal/delivery/http/controllers"
	"coursescheduler/internal/delivery/http/middleware"
	"coursescheduler/internal/repository/postgres"
	"coursescheduler/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	bcryptCost      = 12
)

// @title Course Scheduler API
// @version 1.0
// @description Weekly meeting management and block schedule aggregation for academic terms.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	campusLoc, err := time.LoadLocation(cfg.CampusTZ)
	if err != nil {
		logger.Error("invalid campus timezone", "tz", cfg.CampusTZ, "err", err)
		os.Exit(1)
	}

	// Repositories
	meetingRepo := postgres.NewMeetingRepository(db)
	parentRepo := postgres.NewParentRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcryptCost)
	issuer, verifier := auth.NewJWTTokens(cfg.JWTSecret)

	// Services
	availability := services.NewRoomAvailability(meetingRepo)
	meetingService := services.NewMeetingService(parentRepo, meetingRepo, roomRepo, availability, logger, serviceTimeout)
	scheduleService := services.NewScheduleService(meetingRepo, serviceTimeout)
	calendarService := services.NewCalendarService(scheduleService, campusLoc)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry)

	// Controllers
	meetingController := controllers.NewMeetingController(logger, meetingService)
	scheduleController := controllers.NewScheduleController(logger, scheduleService, calendarService)
	authController := controllers.NewAuthController(logger, authService)

	mux := httpdelivery.NewRouter(logger, verifier, meetingController, scheduleController, authController)

	var handler http.Handler = middleware.LoggingMiddleware(logger, mux)
	if cfg.CORSOrigins != "" {
		handler = middleware.CORS(strings.Split(cfg.CORSOrigins, ","), handler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
		}
	}
}
