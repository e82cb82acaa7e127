// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the backend over gRPC as well as HTTP.
package grpc

import (
	"context"
	"time"

	"munlink-backend/internal/api/grpc/interceptor"
	"munlink-backend/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health entry reported alongside the overall ("") one.
const ServiceName = "munlink.Backend"

const defaultProbeInterval = 15 * time.Second

// HealthChecker keeps the health status in line with a dependency probe,
// normally a database ping.
type HealthChecker struct {
	health   *health.Server
	probe    func(ctx context.Context) error
	interval time.Duration
}

func NewHealthChecker(probe func(ctx context.Context) error, interval time.Duration) *HealthChecker {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &HealthChecker{health: health.NewServer(), probe: probe, interval: interval}
}

// NewServer builds a gRPC server with the health and reflection services and
// the logging and recovery interceptors.
func NewServer(hc *HealthChecker) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptor.Recovery(),
		interceptor.Logging(),
	))
	healthpb.RegisterHealthServer(s, hc.health)
	reflection.Register(s)
	return s
}

// Update probes once and publishes the result.
func (h *HealthChecker) Update(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, h.interval/2)
		err := h.probe(probeCtx)
		cancel()
		if err != nil {
			logger.WarnContext(ctx, "Health probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}

// Run probes on every interval until ctx ends, then reports NOT_SERVING.
func (h *HealthChecker) Run(ctx context.Context) {
	h.Update(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Update(ctx)
		}
	}
}

// Check answers a health request directly, without a network round trip.
func (h *HealthChecker) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
