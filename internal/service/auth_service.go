package service

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/losalerces/backend/internal/auth"
	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/token"
)

// AuthService exposes registration, login and role assignment over gRPC.
type AuthService struct {
	auth   *auth.Service
	tokens *token.Issuer
	log    *logger.Logger
}

func NewAuthService(authSvc *auth.Service, tokens *token.Issuer, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthService{auth: authSvc, tokens: tokens, log: log.With("grpc", AuthServiceName)}
}

// Register expects {email, password, nombre, apellido, rut}.
func (s *AuthService) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.auth.RegisterUser(ctx, auth.RegisterInput{
		Email:     stringField(req, "email"),
		Password:  req.GetFields()["password"].GetStringValue(),
		GivenName: stringField(req, "nombre"),
		Surname:   stringField(req, "apellido"),
		Rut:       stringField(req, "rut"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return mustStruct(map[string]any{
		"id":       user.ID,
		"email":    user.Email,
		"nombre":   user.Nombre,
		"apellido": user.Apellido,
		"rut":      user.Rut,
	})
}

// Login expects {email, password} and answers {token, token_type, expires_in}.
func (s *AuthService) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	signed, err := s.auth.LoginUser(ctx, stringField(req, "email"), req.GetFields()["password"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return mustStruct(map[string]any{
		"token":      signed,
		"token_type": "Bearer",
		"expires_in": s.tokens.TTL().Seconds(),
	})
}

// AssignRole expects {email, role}.
func (s *AuthService) AssignRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, err := requiredString(req, "email")
	if err != nil {
		return nil, err
	}
	role, err := requiredString(req, "role")
	if err != nil {
		return nil, err
	}
	if err := s.auth.AssignRoleToUser(ctx, email, role); err != nil {
		return nil, toStatus(err)
	}
	return mustStruct(map[string]any{"email": email, "role": role})
}
