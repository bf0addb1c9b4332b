package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func checkStatus(t *testing.T, h *GRPCHandler, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestGRPCHandler_AllChecksPass(t *testing.T) {
	h := NewGRPCHandler(map[string]DependencyCheck{
		"mysql": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return nil },
	}, nil)

	h.Check(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h, "mysql"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h, "redis"))
}

func TestGRPCHandler_FailingCheck(t *testing.T) {
	redisUp := true
	h := NewGRPCHandler(map[string]DependencyCheck{
		"mysql": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			if redisUp {
				return nil
			}
			return errors.New("connection refused")
		},
	}, nil)

	h.Check(context.Background())
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h, ""))

	redisUp = false
	h.Check(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, h, "redis"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h, "mysql"))
}

func TestGRPCHandler_Shutdown(t *testing.T) {
	h := NewGRPCHandler(map[string]DependencyCheck{
		"mysql": func(context.Context) error { return nil },
	}, nil)
	h.Check(context.Background())

	h.Shutdown()

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, h, "mysql"))
}
