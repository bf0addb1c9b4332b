package handler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ambikamber/ambikamber.com/internal/logging"
)

// DependencyCheck reports whether one dependency of the gateway is reachable.
type DependencyCheck func(ctx context.Context) error

// GRPCHandler serves the standard gRPC health service. Each check is its
// own service name; the empty name is serving only while all checks pass.
type GRPCHandler struct {
	server *health.Server
	checks map[string]DependencyCheck
	logger *zap.Logger

	mu     sync.Mutex
	status map[string]healthpb.HealthCheckResponse_ServingStatus
}

func NewGRPCHandler(checks map[string]DependencyCheck, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{
		server: health.NewServer(),
		checks: checks,
		logger: logger,
		status: make(map[string]healthpb.HealthCheckResponse_ServingStatus),
	}
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Check runs every dependency check once and publishes the result.
func (h *GRPCHandler) Check(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	overall := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		st := healthpb.HealthCheckResponse_SERVING
		if err := check(ctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
		}
		h.set(name, st)
	}
	h.set("", overall)
}

func (h *GRPCHandler) set(name string, st healthpb.HealthCheckResponse_ServingStatus) {
	if prev, ok := h.status[name]; ok && prev == st {
		return
	}
	h.status[name] = st
	h.server.SetServingStatus(name, st)
	h.logger.Info("health changed",
		zap.String("action", logging.ActionHealthChanged),
		zap.String("service", name),
		zap.String("status", st.String()),
	)
}

// Run checks every interval until ctx is done.
func (h *GRPCHandler) Run(ctx context.Context, interval time.Duration) {
	h.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			h.Check(checkCtx)
			cancel()
		}
	}
}

// Shutdown marks every service NOT_SERVING so clients drain before the
// server stops.
func (h *GRPCHandler) Shutdown() {
	h.server.Shutdown()
}

func (h *GRPCHandler) Server() healthpb.HealthServer {
	return h.server
}
