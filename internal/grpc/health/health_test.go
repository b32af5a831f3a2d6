package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"

	"shadowcleaner/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func status(t *testing.T, c *Checker, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.Server().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestCheckerServingWithoutBackends(t *testing.T) {
	c := NewChecker(map[string]Pinger{"postgres": nil}, logger.NewNop())
	assert.True(t, c.Update(context.Background()))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, c, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, c, ServiceName))
}

func TestCheckerFollowsBackends(t *testing.T) {
	var redisErr error
	c := NewChecker(map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return redisErr }),
	}, logger.NewNop())
	ctx := context.Background()

	redisErr = errors.New("connection refused")
	assert.False(t, c.Update(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, c, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, c, ServiceName))

	redisErr = nil
	assert.True(t, c.Update(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, c, ""))
}
