package grpcapi

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// PaymentServiceName is the service name probes can ask about in addition to
// the overall "" status.
const PaymentServiceName = "payment.v1.PaymentService"

// HealthHandler serves grpc.health.v1.Health and flips between SERVING and
// NOT_SERVING based on a readiness check.
type HealthHandler struct {
	*health.Server
	check func(ctx context.Context) error
}

func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	h := &HealthHandler{Server: health.NewServer(), check: check}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Probe runs the readiness check once and publishes the result.
func (h *HealthHandler) Probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.check(ctx); err != nil {
		slog.Warn("readiness check failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.setStatus(status)
}

// Run probes every interval until ctx is done, then marks the service as
// shutting down.
func (h *HealthHandler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			h.Probe(probeCtx)
			cancel()
		}
	}
}

func (h *HealthHandler) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.SetServingStatus("", status)
	h.SetServingStatus(PaymentServiceName, status)
}

func NewServer(h *HealthHandler) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)
	return s
}
