package service

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/observability"
)

// NewServer builds a gRPC server with logging, optional metrics and the extra
// interceptors chained in that order, plus health and reflection.
func NewServer(log *logger.Logger, metrics *observability.Metrics, extra ...grpc.UnaryServerInterceptor) (*grpc.Server, *health.Server) {
	chain := []grpc.UnaryServerInterceptor{LoggingInterceptor(log)}
	if metrics != nil {
		chain = append(chain, metrics.UnaryServerInterceptor())
	}
	chain = append(chain, extra...)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

// MarkServing flags the overall server and every named service as SERVING.
func MarkServing(hs *health.Server, services ...string) {
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range services {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
}
