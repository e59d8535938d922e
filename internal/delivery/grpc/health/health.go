package health

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name clients pass in HealthCheckRequest.Service.
const ServiceName = "timetracker"

// DefaultInterval replaces a non-positive refresh interval.
const DefaultInterval = 10 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps the standard gRPC health service in sync with the database.
type Checker struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   *slog.Logger
}

func NewChecker(pinger Pinger, interval time.Duration, logger *slog.Logger) *Checker {
	if interval <= 0 {
		logger.Warn("invalid health interval, using default",
			slog.Duration("interval", interval),
			slog.Duration("default", DefaultInterval),
		)
		interval = DefaultInterval
	}
	return &Checker{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
}

// Refresh pings once and publishes the result for both the overall server and ServiceName.
func (c *Checker) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, c.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := c.pinger.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		c.logger.Warn("database ping failed", slog.String("error", err.Error()))
	}
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
	return status
}

// Run refreshes on every tick until ctx is done, then marks everything NOT_SERVING.
func (c *Checker) Run(ctx context.Context) error {
	c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return nil
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}
