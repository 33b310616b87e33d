package grpc

import (
	"context"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/common"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type access int

const (
	accessAuthenticated access = iota
	accessPublic
	accessAdmin
)

// methodAccess lists the methods that do not fall back to accessAuthenticated.
var methodAccess = map[string]access{
	loginMethod:                    accessPublic,
	registerMethod:                 accessPublic,
	createUserMethod:               accessAdmin,
	"/grpc.health.v1.Health/Check": accessPublic,
	"/grpc.health.v1.Health/List":  accessPublic,
	"/grpc.health.v1.Health/Watch": accessPublic,
}

func (s *GRPCServer) accessInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}

	return handler(ctx, req)
}

func (s *GRPCServer) accessStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}

	return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
}

// identityStream carries the authenticated context into stream handlers.
type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context { return s.ctx }

// authorize applies the access level of method. It returns ctx carrying the
// caller's identity, or a status error.
func (s *GRPCServer) authorize(ctx context.Context, method string) (context.Context, error) {

	level := methodAccess[method]
	if level == accessPublic {
		return ctx, nil
	}

	header, present, err := authorizationValue(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}

	secret := s.settings.Load().Secret

	var id *auth.Identity
	if level == accessAdmin {
		id, err = auth.AuthenticateAdmin(header, present, secret)
	} else {
		id, err = auth.Authenticate(header, present, secret)
	}
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}

	return auth.WithIdentity(ctx, id), nil
}

func authorizationValue(ctx context.Context) (string, bool, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false, nil
	}
	values := md.Get(common.AuthorizationHeaderName)
	switch len(values) {
	case 0:
		return "", false, nil
	case 1:
		return values[0], true, nil
	default:
		return "", true, auth.ErrMalformedCredential
	}
}

// toStatus converts err to a status carrying only the public message.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	kind := auth.KindOf(err)
	if kind == auth.KindInternal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "kind", kind.String())
	}
	return status.Error(auth.GRPCCode(kind), auth.Message(err))
}
