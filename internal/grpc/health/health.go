// Package health exposes the standard gRPC health service, driven by pings
// against the enabled storage backends.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"shadowcleaner/pkg/logger"
)

// ServiceName is the health service name reported alongside the overall status.
const ServiceName = "shadowcleaner.v1.Scan"

// DefaultInterval is how often backends are pinged.
const DefaultInterval = 10 * time.Second

// Pinger is any backend with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps the health server status in sync with its backends
type Checker struct {
	server   *health.Server
	backends map[string]Pinger
	logger   *logger.Logger
}

// NewChecker creates a checker. Nil backends are skipped, so disabled
// storage never marks the service unhealthy.
func NewChecker(backends map[string]Pinger, log *logger.Logger) *Checker {
	live := make(map[string]Pinger, len(backends))
	for name, b := range backends {
		if b != nil {
			live[name] = b
		}
	}
	c := &Checker{
		server:   health.NewServer(),
		backends: live,
		logger:   log.WithComponent("grpc-health"),
	}
	c.set(grpc_health_v1.HealthCheckResponse_SERVING)
	return c
}

// Register registers the gRPC health check service
func (c *Checker) Register(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, c.server)
}

// Server returns the underlying health server
func (c *Checker) Server() *health.Server {
	return c.server
}

// Update pings every backend once and sets the serving status. It reports
// whether all backends responded.
func (c *Checker) Update(ctx context.Context) bool {
	healthy := true
	for name, b := range c.backends {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := b.Ping(pingCtx)
		cancel()
		if err != nil {
			healthy = false
			c.logger.Warn().Err(err).Str("backend", name).Msg("health check failed")
		}
	}

	if healthy {
		c.set(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		c.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

// Run updates the status every interval until ctx is done, then marks the
// service as shutting down.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Update(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Update(ctx)
		}
	}
}

func (c *Checker) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
