package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Check probes one backing dependency.
type Check func(ctx context.Context) error

// HealthServer exposes the gRPC health checking protocol for orchestrator probes.
// The service status follows the registered dependency checks.
type HealthServer struct {
	server  *grpc.Server
	health  *health.Server
	service string
	checks  map[string]Check
	logger  *logger.Logger
}

func NewHealthServer(service string, log *logger.Logger) *HealthServer {
	server := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	reflection.Register(server)

	return &HealthServer{
		server:  server,
		health:  hs,
		service: service,
		checks:  make(map[string]Check),
		logger:  log.Named("HealthServer"),
	}
}

// AddCheck registers a dependency probe under name.
func (s *HealthServer) AddCheck(name string, check Check) {
	s.checks[name] = check
}

// Serve blocks until the server stops. A graceful stop is not an error.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.health.SetServingStatus(s.service, grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.logger.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Probe runs every check once and updates the service and overall serving status.
func (s *HealthServer) Probe(ctx context.Context) bool {
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Dependency check failed", zap.String("dependency", name), zap.Error(err))
			healthy = false
		}
	}
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !healthy {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(s.service, status)
	s.health.SetServingStatus("", status)
	return healthy
}

// Monitor probes on every tick until ctx is done.
func (s *HealthServer) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval/2)
			s.Probe(probeCtx)
			cancel()
		}
	}
}

// Shutdown reports NOT_SERVING and stops the server gracefully.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.logger.Info("gRPC health server stopped.")
}
