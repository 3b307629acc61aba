// Command tutoring-server runs the tutoring scheduling API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/tutoring-scheduler/internal/application"
	"github.com/example/tutoring-scheduler/internal/availability"
	"github.com/example/tutoring-scheduler/internal/config"
	httptransport "github.com/example/tutoring-scheduler/internal/http"
	"github.com/example/tutoring-scheduler/internal/persistence/sqlite"
	"github.com/example/tutoring-scheduler/internal/scheduler"
	"github.com/example/tutoring-scheduler/internal/timezone"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLitePath))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	patternRepo := sqlite.NewPatternRepository(pool)
	specificRepo := sqlite.NewSpecificDateRepository(pool)
	bookingRepo := sqlite.NewBookingRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)
	courseRepo := sqlite.NewCourseRepository(pool)

	converter, err := buildConverter(cfg.ConversionStrategy)
	if err != nil {
		logger.Error("failed to configure timezone conversion", "error", err)
		os.Exit(1)
	}
	window, err := buildWorkingHours(cfg)
	if err != nil {
		logger.Error("failed to configure working hours window", "error", err)
		os.Exit(1)
	}
	expander := availability.NewExpander(converter, timezone.NewDetector(window, converter))

	userService := application.NewUserService(userRepo, idGenerator, now, logger)
	availabilityService := application.NewAvailabilityService(patternRepo, specificRepo, userService, expander, application.AvailabilityServiceOptions{
		Courses:         courseRepo,
		CacheTTL:        cfg.CacheTTL,
		CacheMaxEntries: cfg.CacheMaxEntries,
		Logger:          logger,
	})
	patternService := application.NewPatternService(patternRepo, specificRepo, userService, availabilityService, idGenerator, logger)
	bookingService := application.NewBookingService(bookingRepo, userService, availabilityService, scheduler.NewDetector(scheduler.Policy{
		MinDuration:   time.Duration(cfg.MinSessionMinutes) * time.Minute,
		MaxDuration:   time.Duration(cfg.MaxSessionMinutes) * time.Minute,
		BusinessStart: cfg.BusinessHoursFrom,
		BusinessEnd:   cfg.BusinessHoursTo,
	}, now), idGenerator, now, logger)
	courseService := application.NewCourseService(courseRepo, userService, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Availability: httptransport.NewAvailabilityHandler(availabilityService, logger),
		Patterns:     httptransport.NewPatternHandler(patternService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Courses:      httptransport.NewCourseHandler(courseService, logger),
		Weekdays:     httptransport.NewWeekdayHandler(logger),
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("tutoring API listening", "addr", server.Addr, "conversion_strategy", cfg.ConversionStrategy)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func buildConverter(strategy string) (timezone.Converter, error) {
	switch strategy {
	case "", "iana":
		return timezone.LocationConverter{}, nil
	case "legacy":
		return timezone.FixedOffsetConverter{}, nil
	default:
		return nil, fmt.Errorf("unknown conversion strategy %q", strategy)
	}
}

func buildWorkingHours(cfg config.Config) (timezone.WorkingHours, error) {
	start, err := timezone.ParseTimeOfDay(cfg.WorkingHoursStart)
	if err != nil {
		return timezone.WorkingHours{}, fmt.Errorf("working hours start: %w", err)
	}
	end, err := timezone.ParseTimeOfDay(cfg.WorkingHoursEnd)
	if err != nil {
		return timezone.WorkingHours{}, fmt.Errorf("working hours end: %w", err)
	}
	return timezone.WorkingHours{StartMinute: start, EndMinute: end}, nil
}
