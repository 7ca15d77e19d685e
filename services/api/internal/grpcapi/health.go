// Package grpcapi serves the gRPC health protocol for the API service so
// orchestrators can probe it the same way as the HTTP /readyz route.
package grpcapi

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Server struct {
	grpc    *grpc.Server
	health  *health.Server
	service string
	ready   func() error
	log     *zap.Logger
}

// New builds a server reporting service as SERVING while ready returns nil.
// A nil ready always reports SERVING.
func New(service string, ready func() error, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		grpc:    grpc.NewServer(),
		health:  health.NewServer(),
		service: service,
		ready:   ready,
		log:     log,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.probe()
	return s
}

// probe refreshes the status of both the named service and the server as a
// whole ("").
func (s *Server) probe() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ready != nil {
		if err := s.ready(); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.log.Debug("grpc health: not ready", zap.Error(err))
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.service, status)
}

// Watch re-probes readiness every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probe()
		}
	}
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc server starting", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Shutdown marks the server NOT_SERVING, then stops gracefully, forcing the
// stop when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	return nil
}
