package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/tair/retail-ledger/pkg/logger"
)

// ServiceName is the name the ledger reports health under
const ServiceName = "ledger.v1.Ledger"

// Pinger reports store health
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthMonitor keeps the gRPC health service in step with the store
type HealthMonitor struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	timeout  time.Duration
}

// NewHealthMonitor creates a monitor; statuses start as NOT_SERVING until the first check
func NewHealthMonitor(store Pinger, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthMonitor{
		server:   server,
		store:    store,
		interval: interval,
		timeout:  2 * time.Second,
	}
}

// Server returns the health service implementation
func (m *HealthMonitor) Server() *health.Server {
	return m.server
}

// Check pings the store once and publishes the result
func (m *HealthMonitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := m.store.Ping(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Store health check failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks on every tick until ctx ends, then marks everything NOT_SERVING
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
