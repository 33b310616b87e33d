// Package server wires configuration, storage, the auth service and the
// HTTP and gRPC transports, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/cryptox"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/httpapi"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/repositories/repomanager"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/services"

	gs "github.com/andreacfromtheapp/random-word-api-sub000/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	settings    *config.SettingsStore
	authService *services.AuthService

	// reload re-reads the configuration when the config file changes.
	reload func() (*config.Config, error)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	if c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "using the default JWT secret; set JWT_SECRET in production")
	}

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	settings, err := config.NewSettingsStore(c.Settings())
	if err != nil {
		db.Close()
		return nil, err
	}

	hasher := cryptox.NewPasswordHasher(cryptox.DefaultParams, c.HashConcurrency)
	as := services.NewAuthService(db, rm, hasher, settings, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		settings:    settings,
		authService: as,
		reload:      config.LoadConfig,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runComponent runs fn and cancels the app when it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if addr := app.config.EndpointAddrHTTP; addr != "" {
		s := httpapi.NewHTTPServer(addr, app.logger, app.authService, app.settings, app.db)
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, "http", s.Run)
		}()
	}

	if addr := app.config.EndpointAddrGRPC; addr != "" {
		s := gs.NewGRPCServer(addr, app.logger, app.authService, app.settings, app.db)
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, "grpc", s.Run)
		}()
	}

	if path := app.config.ConfigFile; path != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, "config_watcher", func(ctx context.Context) error {
				return config.WatchSettings(ctx, path, app.reload, app.settings, app.logger)
			})
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
