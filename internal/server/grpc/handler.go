package grpc

import (
	"context"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/auth"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func tokenStruct(t *services.TokenResponse) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"token":      structpb.NewStringValue(t.Token),
		"expires_in": structpb.NewNumberValue(float64(t.ExpiresIn)),
	}}
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	username, password, err := credentials(req)
	if err != nil {
		return nil, s.toStatus(ctx, loginMethod, err)
	}

	tokens, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, s.toStatus(ctx, loginMethod, err)
	}

	return tokenStruct(tokens), nil
}

// Register ignores any is_admin field in the request.
func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	username, password, err := credentials(req)
	if err != nil {
		return nil, s.toStatus(ctx, registerMethod, err)
	}

	tokens, err := s.auth.Register(ctx, username, password)
	if err != nil {
		return nil, s.toStatus(ctx, registerMethod, err)
	}

	s.logger.Info(ctx, "Registered", "username", username)
	return tokenStruct(tokens), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, whoAmIMethod, auth.ErrMissingCredential)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(id.ID),
		"username": structpb.NewStringValue(id.UserName),
		"is_admin": structpb.NewBoolValue(id.IsAdmin),
	}}, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	username, password, err := credentials(req)
	if err != nil {
		return nil, s.toStatus(ctx, createUserMethod, err)
	}
	isAdmin, err := boolField(req, "is_admin")
	if err != nil {
		return nil, s.toStatus(ctx, createUserMethod, err)
	}

	u, err := s.auth.CreateUser(ctx, username, password, isAdmin)
	if err != nil {
		return nil, s.toStatus(ctx, createUserMethod, err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         structpb.NewStringValue(u.ID),
		"username":   structpb.NewStringValue(u.UserName),
		"is_admin":   structpb.NewBoolValue(u.IsAdmin),
		"created_at": timestampValue(u.CreatedAt),
		"updated_at": timestampValue(u.UpdatedAt),
	}}, nil
}
