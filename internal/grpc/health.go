// Package grpc exposes the cart store's health over the standard gRPC health protocol.
package grpc

import (
	"sync/atomic"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the cart store.
const ServiceName = "cartstore.CartStore"

// Health tracks whether cart snapshots are reaching durable storage.
type Health struct {
	server   *health.Server
	logger   *zap.Logger
	degraded atomic.Bool
}

func NewHealth(logger *zap.Logger) *Health {
	h := &Health{server: health.NewServer(), logger: logger}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return h
}

// ObservePersist is meant to be passed to the store as its persist observer.
func (h *Health) ObservePersist(err error) {
	if err != nil {
		if !h.degraded.Swap(true) {
			h.logger.Warn("cart persistence degraded", zap.Error(err))
			h.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		}
		return
	}
	if h.degraded.Swap(false) {
		h.logger.Info("cart persistence recovered")
		h.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	}
}

// NewServer returns a gRPC server with the health service and reflection registered.
func (h *Health) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	return s
}

// Shutdown marks every service as not serving.
func (h *Health) Shutdown() {
	h.server.Shutdown()
}
