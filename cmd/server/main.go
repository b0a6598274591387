// Package main is the entry point for the academy management server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Service: division policy engines and lecture orchestration
// - Infrastructure: PostgreSQL and Redis repositories, notifications
// - Interface: the REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aslan-academy/academy-management/config"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/internal/infrastructure/notify"
	"github.com/aslan-academy/academy-management/internal/infrastructure/persistence/postgres"
	"github.com/aslan-academy/academy-management/internal/infrastructure/persistence/redis"
	httpserver "github.com/aslan-academy/academy-management/internal/interface/http"
	"github.com/aslan-academy/academy-management/internal/middleware"
	lecturesvc "github.com/aslan-academy/academy-management/internal/service/lecture"
	studentsvc "github.com/aslan-academy/academy-management/internal/service/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
	"github.com/aslan-academy/academy-management/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting academy management server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Division(cfg.Academy.Division),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE CONNECTION (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed",
				logger.Int("applied", applied),
				logger.Int("total", len(status)),
			)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional read-side cache)
	// ─────────────────────────────────────────────────────────────────────────
	var eventsCache lecturesvc.EventsCache
	var topCache studentsvc.TopStudentsCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer cache.Close()
			eventsCache = cache
			topCache = cache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	lectureRepo := postgres.NewLectureRepository(dbConn)
	enrollmentRepo := postgres.NewEnrollmentRepository(dbConn)
	memberRepo := postgres.NewMemberRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. NOTIFICATIONS
	// ─────────────────────────────────────────────────────────────────────────
	notifier := notify.NewLogNotifier(log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing services...")

	division := student.Division(cfg.Academy.Division)
	studentEngine, err := studentsvc.ForDivision(division, studentRepo, notifier, topCache, log)
	if err != nil {
		return fmt.Errorf("failed to select division policy: %w", err)
	}

	lectureService := lecturesvc.NewService(lectureRepo, enrollmentRepo, studentRepo, eventsCache, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. CROSS-CUTTING DECORATORS
	// ─────────────────────────────────────────────────────────────────────────
	execLog := middleware.NewExecutionLogger(log)
	monitor := middleware.NewPerformanceMonitor(notifier, log).
		WithThreshold(cfg.Academy.SlowThreshold)
	attendance := middleware.NewAttendanceWatch(notifier, log).
		WithCutoff(cfg.Academy.LateCutoffHour, cfg.Academy.LateCutoffMinute)

	students := middleware.NewInstrumentedStudentService(studentEngine, execLog, monitor, attendance)
	lectures := middleware.NewInstrumentedLectureService(lectureService, execLog)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout

	httpDeps := httpserver.Dependencies{
		Students: students,
		Lectures: lectures,
		Members:  memberRepo,
		Logger:   log,
		Health:   dbConn.Ping,
	}

	server := httpserver.NewServer(httpConfig, httpDeps)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("academy management server is running",
		logger.String("address", server.Address()),
		logger.Division(cfg.Academy.Division),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	}

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger configures structured logging from the observability config.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)

	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}

	return logger.New(opts)
}
