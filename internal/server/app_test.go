package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = "sqlite:" + filepath.Join(t.TempDir(), "words.db")
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	cfg.SecretKey = "app-test-secret"
	cfg.LogLevel = "error"
	return cfg
}

func TestNewApp_RejectsBadLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "loud"

	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewApp_MigratesStore(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)
	defer app.db.Close()

	var n int
	require.NoError(t, app.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Zero(t, n)
	assert.Equal(t, []byte("app-test-secret"), app.settings.Load().Secret)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
