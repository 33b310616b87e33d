package grpc

import (
	"context"
	"time"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "wordapi.auth.v1.AuthService"

const (
	loginMethod      = "/" + ServiceName + "/Login"
	registerMethod   = "/" + ServiceName + "/Register"
	whoAmIMethod     = "/" + ServiceName + "/WhoAmI"
	createUserMethod = "/" + ServiceName + "/CreateUser"
)

type authServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*authServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", loginMethod, authServiceServer.Login),
		unary("Register", registerMethod, authServiceServer.Register),
		unary("WhoAmI", whoAmIMethod, authServiceServer.WhoAmI),
		unary("CreateUser", createUserMethod, authServiceServer.CreateUser),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wordapi/auth/v1/auth.proto",
}

type structCall func(authServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name, fullMethod string, call structCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(authServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// AuthClient calls AuthService over conn.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, loginMethod, in, opts...)
}

func (c *AuthClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, registerMethod, in, opts...)
}

func (c *AuthClient) WhoAmI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, whoAmIMethod, in, opts...)
}

func (c *AuthClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, createUserMethod, in, opts...)
}

// field readers; absent fields read as zero values, wrong types are
// validation failures.

func stringField(in *structpb.Struct, name string) (string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", auth.Invalid(name + " must be a string")
	}
	return sv.StringValue, nil
}

func boolField(in *structpb.Struct, name string) (bool, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return false, nil
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, auth.Invalid(name + " must be a boolean")
	}
	return bv.BoolValue, nil
}

func credentials(in *structpb.Struct) (string, string, error) {
	username, err := stringField(in, "username")
	if err != nil {
		return "", "", err
	}
	password, err := stringField(in, "password")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func timestampValue(t time.Time) *structpb.Value {
	return structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}
