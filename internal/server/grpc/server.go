// Package grpc exposes the auth operations as the wordapi.auth.v1.AuthService
// gRPC service. Messages are google.protobuf.Struct values carrying the same
// fields as the HTTP JSON bodies.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/models"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.TokenResponse, error)
	Register(ctx context.Context, username, password string) (*services.TokenResponse, error)
	CreateUser(ctx context.Context, username, password string, isAdmin bool) (*models.User, error)
}

type SettingsProvider interface {
	Load() config.Settings
}

// Pinger reports whether the database is reachable; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const (
	defaultHealthInterval = 5 * time.Second
	pingTimeout           = 2 * time.Second
)

type GRPCServer struct {
	address  string
	auth     AuthService
	settings SettingsProvider
	db       Pinger
	logger   logging.Logger

	// healthInterval is how often the database is pinged to refresh the
	// serving status.
	healthInterval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, svc AuthService, settings SettingsProvider, db Pinger) *GRPCServer {
	return &GRPCServer{
		address:        a,
		logger:         l.With("module", "grpc_server"),
		auth:           svc,
		settings:       settings,
		db:             db,
		healthInterval: defaultHealthInterval,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessInterceptor),
		grpc.ChainStreamInterceptor(s.accessStreamInterceptor),
	)

	srv.RegisterService(&authServiceDesc, s)

	hs := health.NewServer()
	s.refreshHealth(ctx, hs)
	healthpb.RegisterHealthServer(srv, hs)

	go s.watchHealth(ctx, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

// refreshHealth sets the overall and service status from a database ping.
func (s *GRPCServer) refreshHealth(ctx context.Context, hs *health.Server) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(pingCtx); err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "readiness check failed", "error", err)
	}

	hs.SetServingStatus("", st)
	hs.SetServingStatus(ServiceName, st)
}

func (s *GRPCServer) watchHealth(ctx context.Context, hs *health.Server) {
	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshHealth(ctx, hs)
		}
	}
}
