package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/models"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testSecret = "grpc-test-secret"

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

type staticSettings struct{ s config.Settings }

func (s staticSettings) Load() config.Settings { return s.s }

type fakeAuth struct {
	loginFn    func(ctx context.Context, u, p string) (*services.TokenResponse, error)
	registerFn func(ctx context.Context, u, p string) (*services.TokenResponse, error)
	createFn   func(ctx context.Context, u, p string, isAdmin bool) (*models.User, error)
}

func (f *fakeAuth) Login(ctx context.Context, u, p string) (*services.TokenResponse, error) {
	return f.loginFn(ctx, u, p)
}

func (f *fakeAuth) Register(ctx context.Context, u, p string) (*services.TokenResponse, error) {
	return f.registerFn(ctx, u, p)
}

func (f *fakeAuth) CreateUser(ctx context.Context, u, p string, isAdmin bool) (*models.User, error) {
	return f.createFn(ctx, u, p, isAdmin)
}

type fakePinger struct{ down atomic.Bool }

func (p *fakePinger) PingContext(context.Context) error {
	if p.down.Load() {
		return errors.New("database is closed")
	}
	return nil
}

func newTestServer(svc AuthService) *GRPCServer {
	return newTestServerWithDB(svc, &fakePinger{})
}

func newTestServerWithDB(svc AuthService, db Pinger) *GRPCServer {
	return NewGRPCServer("bufnet", nopLogger{}, svc, staticSettings{config.Settings{Secret: []byte(testSecret), TokenLifetimeMinutes: 60}}, db)
}

// dial serves s over an in-memory listener and returns a connected client.
func dial(t *testing.T, s *GRPCServer) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return conn
}

func mustToken(t *testing.T, id auth.Identity) string {
	t.Helper()
	tok, err := auth.GenerateToken(id, []byte(testSecret), 60)
	require.NoError(t, err)
	return tok
}

func withBearer(ctx context.Context, t *testing.T, id auth.Identity) context.Context {
	t.Helper()
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+mustToken(t, id))
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func requireCode(t *testing.T, err error, code codes.Code, msg string) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)
	assert.Equal(t, code, st.Code())
	if msg != "" {
		assert.Equal(t, msg, st.Message())
	}
}

func TestLogin(t *testing.T) {
	svc := &fakeAuth{loginFn: func(_ context.Context, u, p string) (*services.TokenResponse, error) {
		if u == "alice" && p == "secret1" {
			return &services.TokenResponse{Token: "tok", ExpiresIn: 3600}, nil
		}
		return nil, auth.ErrInvalidCredentials
	}}
	client := NewAuthClient(dial(t, newTestServer(svc)))
	ctx := context.Background()

	out, err := client.Login(ctx, mustStruct(t, map[string]any{"username": "alice", "password": "secret1"}))
	require.NoError(t, err)
	assert.Equal(t, "tok", out.Fields["token"].GetStringValue())
	assert.Equal(t, float64(3600), out.Fields["expires_in"].GetNumberValue())

	_, err = client.Login(ctx, mustStruct(t, map[string]any{"username": "alice", "password": "bad"}))
	requireCode(t, err, codes.Unauthenticated, "invalid username or password")
}

func TestLogin_WrongFieldType(t *testing.T) {
	client := NewAuthClient(dial(t, newTestServer(&fakeAuth{})))

	_, err := client.Login(context.Background(), mustStruct(t, map[string]any{"username": 5, "password": "x"}))
	requireCode(t, err, codes.InvalidArgument, "username must be a string")
}

func TestRegister(t *testing.T) {
	svc := &fakeAuth{registerFn: func(_ context.Context, u, _ string) (*services.TokenResponse, error) {
		if u == "taken" {
			return nil, auth.ErrUsernameExists
		}
		return &services.TokenResponse{Token: "new", ExpiresIn: 60}, nil
	}}
	client := NewAuthClient(dial(t, newTestServer(svc)))
	ctx := context.Background()

	out, err := client.Register(ctx, mustStruct(t, map[string]any{"username": "bob", "password": "secret1", "is_admin": true}))
	require.NoError(t, err)
	assert.Equal(t, "new", out.Fields["token"].GetStringValue())

	_, err = client.Register(ctx, mustStruct(t, map[string]any{"username": "taken", "password": "secret1"}))
	requireCode(t, err, codes.AlreadyExists, "username already exists")
}

func TestWhoAmI(t *testing.T) {
	client := NewAuthClient(dial(t, newTestServer(&fakeAuth{})))
	ctx := withBearer(context.Background(), t, auth.Identity{ID: "u-1", UserName: "alice"})

	out, err := client.WhoAmI(ctx, &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "u-1", out.Fields["id"].GetStringValue())
	assert.Equal(t, "alice", out.Fields["username"].GetStringValue())
	assert.False(t, out.Fields["is_admin"].GetBoolValue())
}

func TestWhoAmI_Rejections(t *testing.T) {
	client := NewAuthClient(dial(t, newTestServer(&fakeAuth{})))

	tests := []struct {
		name string
		md   []string
		msg  string
	}{
		{name: "missing", msg: "missing authorization token"},
		{name: "wrong scheme", md: []string{"authorization", "Token abc"}, msg: "invalid authorization header"},
		{name: "repeated", md: []string{"authorization", "Bearer a", "authorization", "Bearer b"}, msg: "invalid authorization header"},
		{name: "bad token", md: []string{"authorization", "Bearer garbage"}, msg: "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if len(tt.md) > 0 {
				ctx = metadata.AppendToOutgoingContext(ctx, tt.md...)
			}
			_, err := client.WhoAmI(ctx, &structpb.Struct{})
			requireCode(t, err, codes.Unauthenticated, tt.msg)
		})
	}
}

func TestCreateUser(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &fakeAuth{createFn: func(_ context.Context, u, _ string, isAdmin bool) (*models.User, error) {
		return &models.User{ID: "u-2", UserName: u, IsAdmin: isAdmin, CreatedAt: created, UpdatedAt: created}, nil
	}}
	client := NewAuthClient(dial(t, newTestServer(svc)))
	ctx := withBearer(context.Background(), t, auth.Identity{ID: "u-1", UserName: "root", IsAdmin: true})

	out, err := client.CreateUser(ctx, mustStruct(t, map[string]any{"username": "carol", "password": "secret1", "is_admin": true}))
	require.NoError(t, err)
	assert.Equal(t, "u-2", out.Fields["id"].GetStringValue())
	assert.True(t, out.Fields["is_admin"].GetBoolValue())
	assert.Equal(t, "2025-01-02T03:04:05Z", out.Fields["created_at"].GetStringValue())
	assert.NotContains(t, out.Fields, "password_hash")
}

func TestCreateUser_NonAdminDenied(t *testing.T) {
	svc := &fakeAuth{createFn: func(context.Context, string, string, bool) (*models.User, error) {
		t.Error("handler must not run")
		return nil, nil
	}}
	client := NewAuthClient(dial(t, newTestServer(svc)))
	ctx := withBearer(context.Background(), t, auth.Identity{ID: "u-1", UserName: "alice"})

	_, err := client.CreateUser(ctx, mustStruct(t, map[string]any{"username": "x", "password": "secret1"}))
	requireCode(t, err, codes.PermissionDenied, "admin privileges required")
}

func TestInternalErrorHidesCause(t *testing.T) {
	svc := &fakeAuth{loginFn: func(context.Context, string, string) (*services.TokenResponse, error) {
		return nil, auth.Internal(context.DeadlineExceeded)
	}}
	client := NewAuthClient(dial(t, newTestServer(svc)))

	_, err := client.Login(context.Background(), mustStruct(t, map[string]any{"username": "a", "password": "b"}))
	requireCode(t, err, codes.Internal, "internal server error")
}

func TestHealthIsPublic(t *testing.T) {
	conn := dial(t, newTestServer(&fakeAuth{}))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestHealthFollowsDatabase(t *testing.T) {
	db := &fakePinger{}
	s := newTestServerWithDB(&fakeAuth{}, db)
	s.healthInterval = 10 * time.Millisecond
	client := healthpb.NewHealthClient(dial(t, s))

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.GetStatus()
	}

	require.Equal(t, healthpb.HealthCheckResponse_SERVING, check())

	db.down.Store(true)
	require.Eventually(t, func() bool { return check() == healthpb.HealthCheckResponse_NOT_SERVING },
		2*time.Second, 10*time.Millisecond)

	db.down.Store(false)
	require.Eventually(t, func() bool { return check() == healthpb.HealthCheckResponse_SERVING },
		2*time.Second, 10*time.Millisecond)
}

func TestHealthStartsNotServingWhenDatabaseDown(t *testing.T) {
	db := &fakePinger{}
	db.down.Store(true)
	conn := dial(t, newTestServerWithDB(&fakeAuth{}, db))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealthWatchIsPublic(t *testing.T) {
	conn := dial(t, newTestServer(&fakeAuth{}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := healthpb.NewHealthClient(conn).Watch(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)

	resp, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeServerStream) Context() context.Context { return f.ctx }

func TestStreamInterceptor_UnknownMethodRequiresToken(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	info := &grpc.StreamServerInfo{FullMethod: "/pkg.Service/Stream"}

	err := s.accessStreamInterceptor(nil, &fakeServerStream{ctx: context.Background()}, info, func(any, grpc.ServerStream) error {
		t.Fatal("handler should not be called when token missing")
		return nil
	})
	requireCode(t, err, codes.Unauthenticated, "missing authorization token")
}

func TestStreamInterceptor_PassesIdentity(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	info := &grpc.StreamServerInfo{FullMethod: "/pkg.Service/Stream"}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+mustToken(t, auth.Identity{ID: "u-9", UserName: "zoe"})))

	var got *auth.Identity
	err := s.accessStreamInterceptor(nil, &fakeServerStream{ctx: ctx}, info, func(_ any, ss grpc.ServerStream) error {
		got, _ = auth.IdentityFromContext(ss.Context())
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u-9", got.ID)
}

func TestInterceptor_UnknownMethodRequiresToken(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	info := &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Other"}

	_, err := s.accessInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	})
	requireCode(t, err, codes.Unauthenticated, "")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakeAuth{}, staticSettings{}, &fakePinger{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakeAuth{}, staticSettings{}, &fakePinger{})
	require.Error(t, s.Run(context.Background()))
}
