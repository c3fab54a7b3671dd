// Package main is the entry point of the Attendance Hub API server.
//
// The server wires one storage backend (PostgreSQL or in-memory), optional
// Redis read-through caches and the optional auth admin client into the
// command and query handlers, and serves them over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satyalok/attendance-hub/config"
	"github.com/satyalok/attendance-hub/internal/application/command"
	"github.com/satyalok/attendance-hub/internal/application/query"
	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
	"github.com/satyalok/attendance-hub/internal/infrastructure/external/authadmin"
	"github.com/satyalok/attendance-hub/internal/infrastructure/metrics"
	"github.com/satyalok/attendance-hub/internal/infrastructure/persistence/memory"
	"github.com/satyalok/attendance-hub/internal/infrastructure/persistence/postgres"
	"github.com/satyalok/attendance-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/satyalok/attendance-hub/internal/interface/http"
	"github.com/satyalok/attendance-hub/internal/interface/http/handlers"
	"github.com/satyalok/attendance-hub/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// repositories is the storage backend selected by configuration.
type repositories struct {
	students student.Repository
	days     attendance.Repository
	teachers teacher.Repository
	close    func()
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.LogCaller,
	}).With(logger.String("service", cfg.App.Name))

	log.Info("starting Attendance Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
		logger.String("storage", cfg.Storage.Driver),
	)

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	repos, err := openStorage(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer repos.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (optional, best effort)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		rosterCache student.RosterCache
		dayCache    attendance.DayCache
	)
	if cfg.Redis.Enabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize

		cache, err := redis.NewCache(ctx, redisCfg)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", logger.Err(err))
		} else {
			defer func() { _ = cache.Close() }()
			rosterCache = redis.NewRosterCache(cache, cfg.Redis.RosterTTL)
			dayCache = redis.NewDayCache(cache, cfg.Redis.DayTTL)
			health.AddOptionalCheck("cache", handlers.NewCacheCheck(cache))
			log.Info("redis caching enabled")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EXTERNAL CLIENTS & METRICS
	// ─────────────────────────────────────────────────────────────────────────
	var revoker teacher.CredentialRevoker
	if cfg.Auth.RevocationURL != "" {
		adminCfg := authadmin.DefaultConfig(cfg.Auth.RevocationURL)
		adminCfg.Token = cfg.Auth.RevocationToken
		adminCfg.Timeout = cfg.Auth.RevocationTTL
		revoker = authadmin.NewClient(adminCfg, log)
		log.Info("credential revocation enabled")
	}

	var (
		recorder command.OutcomeRecorder
		observer httpserver.RequestObserver
		promHTTP http.Handler
	)
	if cfg.Observability.MetricsEnabled {
		m := metrics.New("attendance_hub")
		recorder, observer, promHTTP = m, m, m.Handler()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	policy := storecall.DefaultPolicy()
	policy.ReadTimeout = cfg.Storage.ReadTimeout
	policy.WriteTimeout = cfg.Storage.WriteTimeout

	loc := cfg.App.Location
	roster := query.NewRosterReader(repos.students, rosterCache, policy, log)

	deps := httpserver.Dependencies{
		SubmitAttendance: command.NewSubmitAttendanceHandler(repos.students, repos.days, command.SubmitAttendanceConfig{
			Policy:   policy,
			Location: loc,
			DayCache: dayCache,
			Recorder: recorder,
		}, log),
		RegisterStudent:  command.NewRegisterStudentHandler(repos.students, rosterCache, policy, nil, log),
		TeacherDirectory: command.NewTeacherDirectoryHandler(repos.teachers, revoker, policy, nil, log),
		AttendanceStatus: query.NewGetAttendanceStatusHandler(repos.days, dayCache, policy, nil, loc, log),
		ListStudents:     query.NewListStudentsHandler(roster),
		Report:           query.NewGetReportHandler(repos.days, policy, log),
		ListTeachers:     query.NewListTeachersHandler(repos.teachers, policy),
		Dashboard:        query.NewGetDashboardHandler(roster, repos.teachers, repos.days, policy, nil, loc),
		Authenticator: httpserver.NewAuthenticator(httpserver.AuthConfig{
			JWTSecret:          cfg.Auth.JWTSecret,
			Issuer:             cfg.Auth.Issuer,
			InternalSecretHash: cfg.Auth.InternalSecretHash,
		}),
		HealthChecker:  health,
		Metrics:        observer,
		MetricsHandler: promHTTP,
		Logger:         log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.Version = cfg.App.Version

	server := httpserver.NewServer(httpConfig, deps)
	errCh := server.StartAsync()

	log.Info("Attendance Hub is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Error("http server error", logger.Err(err))
			return err
		}
	}

	log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// openStorage connects the configured backend and registers its health check.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger, health *handlers.CompositeHealthChecker) (*repositories, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			students: store.Students(),
			days:     store.Attendance(),
			teachers: store.Teachers(),
			close:    func() {},
		}, nil
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	pgCfg.MinConns = int32(cfg.Database.MinConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout+5*time.Second)
	defer cancel()

	log.Info("connecting to database")
	conn, err := postgres.NewConnection(connectCtx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Storage.AutoMigrate {
		log.Info("running database migrations")
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	health.AddCheck("database", handlers.NewDatabaseCheck(conn))

	return &repositories{
		students: postgres.NewStudentRepository(conn),
		days:     postgres.NewAttendanceRepository(conn),
		teachers: postgres.NewTeacherRepository(conn),
		close: func() {
			log.Info("closing database connection")
			conn.Close()
		},
	}, nil
}
