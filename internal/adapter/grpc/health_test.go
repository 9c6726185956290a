package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"

	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestHealthServer_FollowsChecks(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := NewHealthServer("estate", logger.NewNop())

	var mongoDown atomic.Bool
	srv.AddCheck("mongo", func(context.Context) error {
		if mongoDown.Load() {
			return errors.New("connection refused")
		}
		return nil
	})

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Shutdown)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := grpc_health_v1.NewHealthClient(conn)
	ctx := context.Background()

	status := func(service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.GetStatus()
	}
	check := func() grpc_health_v1.HealthCheckResponse_ServingStatus {
		named, overall := status("estate"), status("")
		assert.Equal(t, named, overall, "overall status must follow the service status")
		return named
	}

	assert.True(t, srv.Probe(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check())

	mongoDown.Store(true)
	assert.False(t, srv.Probe(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check())

	mongoDown.Store(false)
	srv.Probe(ctx)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check())
}
