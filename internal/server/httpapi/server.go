// Package httpapi exposes the auth operations over HTTP/JSON.
//
//	POST /auth/login     public
//	POST /auth/register  public, always creates a non-admin account
//	GET  /auth/me        bearer token required
//	POST /admin/users    bearer token of an administrator required
//	GET  /health/alive   public, process liveness
//	GET  /health/ready   public, 503 while the database is unreachable
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/models"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/services"
)

const (
	shutdownTimeout = 5 * time.Second
	pingTimeout     = 2 * time.Second
)

// AuthService is the subset of services.AuthService used by the handlers.
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

type HTTPServer struct {
	address  string
	logger   logging.Logger
	auth     AuthService
	settings SettingsProvider
	db       Pinger
}

func NewHTTPServer(address string, l logging.Logger, svc AuthService, settings SettingsProvider, db Pinger) *HTTPServer {
	return &HTTPServer{
		address:  address,
		logger:   l.With("module", "http_server"),
		auth:     svc,
		settings: settings,
		db:       db,
	}
}

// Handler returns the routed handler with the auth middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	requireAuth := RequireAuth(s.settings, s.logger)
	requireAdmin := RequireAdmin(s.settings, s.logger)

	mux.HandleFunc("GET /health/alive", s.alive)
	mux.HandleFunc("GET /health/ready", s.ready)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/register", s.register)
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(s.me)))
	mux.Handle("POST /admin/users", requireAdmin(http.HandlerFunc(s.createUser)))

	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP shutdown incomplete", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
