package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"
	"timetracker/internal/config"
	"timetracker/internal/delivery/grpc/health"
	routes "timetracker/internal/delivery/http"
	httpAdminHandler "timetracker/internal/delivery/http/admin_handler"
	httpAuthHandler "timetracker/internal/delivery/http/auth_handler"
	httpTimeTrackerHandler "timetracker/internal/delivery/http/timetracker_handler"
	"timetracker/internal/metrics"
	psql "timetracker/internal/storage/postgres"
	sessionRepo "timetracker/internal/storage/postgres/timesessions"
	userRepo "timetracker/internal/storage/postgres/users"
	adminUs "timetracker/internal/usecase/admin"
	authUs "timetracker/internal/usecase/auth"
	timetrackerUs "timetracker/internal/usecase/timetracker"
	errHandler "timetracker/pkg/error_handler"
	"timetracker/pkg/jwt"
	requestvalidator "timetracker/pkg/request_validator"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	config := config.LoadConfig()
	logger := setupLogger(config.Env)
	slog.SetDefault(logger)
	logger.Info("Application started", "env", config.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize Postgres connection
	DSN := config.PostgresConfig.DSN()
	pool, err := psql.NewPostgresConnection(DSN)
	if err != nil {
		logger.Error("Failed to connect to the database", "error", err)
		return
	}
	defer pool.Close()
	logger.Info("Connected to the database successfully")

	if err := psql.RunMigrations(ctx, pool); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		return
	}

	// Initialize Redis for the rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.RedisConfig.Addr,
		Password: config.RedisConfig.Password,
		DB:       config.RedisConfig.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unreachable, rate limiting disabled until it recovers", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	jwtManager, err := jwt.NewJWTManager(config.JWTConfig.Secret, config.JWTConfig.ExpirationMinutes)
	if err != nil {
		logger.Error("Invalid JWT configuration", "error", err)
		return
	}

	// Initialize repositories
	users := userRepo.NewUserRepo(pool, m)
	sessions := sessionRepo.NewSessionRepo(pool, m)

	// Initialize use cases
	authUsecase := authUs.NewAuthUsecase(users, jwtManager, m, logger)
	timeTrackerUsecase := timetrackerUs.NewTimeTrackerUsecase(users, sessions, logger)
	adminUsecase := adminUs.NewAdminUsecase(users, sessions, logger)

	if config.AdminConfig.Email != "" {
		if _, err := adminUsecase.EnsureAdmin(ctx, config.AdminConfig.Name, config.AdminConfig.Email, config.AdminConfig.Password); err != nil {
			logger.Error("Failed to bootstrap admin account", "error", err)
			return
		}
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errHandler.HandleError
	e.Validator = requestvalidator.NewRequestValidator()
	e.IPExtractor, err = routes.ClientIPExtractor(config.Server.TrustedProxies)
	if err != nil {
		logger.Error("Invalid trusted proxy configuration", "error", err)
		return
	}

	// Initialize handlers and map routes
	routes.MapRoutes(e, routes.Handlers{
		Auth:        httpAuthHandler.NewAuthHandler(authUsecase),
		TimeTracker: httpTimeTrackerHandler.NewTimeTrackerHandler(timeTrackerUsecase, m, logger),
		Admin:       httpAdminHandler.NewAdminHandler(adminUsecase, timeTrackerUsecase),
	}, authUsecase, logger, config.RateLimiterConfig, m, registry, redisClient, routes.HealthHandler(pool.Ping))

	serverParams := &http.Server{
		Addr:         net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port)),
		Handler:      e,
		ReadTimeout:  config.Server.Timeout,
		WriteTimeout: config.Server.Timeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	grpcServer := grpc.NewServer()
	healthChecker := health.NewChecker(pool, config.GrpcServer.HealthInterval, logger)
	healthChecker.Register(grpcServer)

	// Run the HTTP server, the gRPC health server and the health checker
	// until an interrupt, then shut the servers down with a 5 second budget.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthChecker.Run(gCtx)
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", net.JoinHostPort(config.GrpcServer.Host, strconv.Itoa(config.GrpcServer.Port)))
		if err != nil {
			return err
		}
		logger.Info("gRPC server is starting", slog.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("addr", serverParams.Addr))
		if err := serverParams.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down servers...")

		shutDownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			if err := serverParams.Shutdown(shutDownCtx); err != nil {
				logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
			}
		}()

		go func() {
			defer wg.Done()
			grpcServer.GracefulStop()
		}()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			logger.Info("All servers stopped gracefully")
		case <-shutDownCtx.Done():
			logger.Warn("Shutdown timeout exceeded, forcing stop")
			grpcServer.Stop()
		}

		return nil
	})

	// Wait for all goroutines to finish and check for errors
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Application stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// setupLogger configures the logger based on the environment (production, development, local).
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case "production":
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "development", "local":
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return log
}
