// Package grpc runs the ops listener. It serves the standard
// grpc.health.v1 protocol and keeps the reported status in line with the
// store and cache.
package grpc

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	DefaultProbeInterval = 10 * time.Second
	probeTimeout         = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type OpsServer struct {
	address  string
	checks   map[string]Pinger
	interval time.Duration
	health   *health.Server
	logger   logging.Logger
}

func NewOpsServer(a string, l logging.Logger, checks map[string]Pinger) *OpsServer {
	return &OpsServer{
		address:  a,
		checks:   checks,
		interval: DefaultProbeInterval,
		health:   health.NewServer(),
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *OpsServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *OpsServer) serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probeOnce(ctx)
	go s.probeLoop(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *OpsServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probeOnce(ctx)
		}
	}
}

// probeOnce pings every dependency and publishes the overall status under
// the empty service name.
func (s *OpsServer) probeOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	st := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			s.logger.Warn(ctx, "dependency unhealthy", "component", name, "error", err)
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus("", st)
	return st
}
