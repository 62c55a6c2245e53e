// Package auth registers users, logs them in and manages their roles.
package auth

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/identity"
	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/model"
	"github.com/losalerces/backend/internal/token"
)

type RegisterInput struct {
	Email     string
	Password  string
	GivenName string
	Surname   string
	Rut       string
}

type Service struct {
	db     *gorm.DB
	users  *identity.UserManager
	roles  *identity.RoleManager
	tokens *token.Issuer
	log    *logger.Logger
}

func NewService(db *gorm.DB, users *identity.UserManager, roles *identity.RoleManager, tokens *token.Issuer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		db:     db,
		users:  users,
		roles:  roles,
		tokens: tokens,
		log:    log.With("service", "AuthService"),
	}
}

// RegisterUser creates the user and gives it the default role in one transaction.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*model.ApplicationUser, error) {
	user := &model.ApplicationUser{
		UserName: in.Email,
		Email:    in.Email,
		Nombre:   in.GivenName,
		Apellido: in.Surname,
		Rut:      in.Rut,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if err := users.Create(ctx, user, in.Password); err != nil {
			return err
		}
		if _, err := s.roles.WithTx(tx).Ensure(ctx, model.DefaultRole); err != nil {
			return fmt.Errorf("ensure default role: %w", err)
		}
		return users.AddToRole(ctx, user, model.DefaultRole)
	})
	if err != nil {
		if apperr.IsValidation(err) {
			s.log.Info("registration rejected", "error", err)
		} else {
			s.log.Error("registration failed", "error", err)
		}
		return nil, err
	}
	s.log.Info("user registered", "userID", user.ID)
	return user, nil
}

// LoginUser returns a signed token, or "" and apperr.ErrAuthenticationFailure when the
// credentials do not verify. The error never says which part was wrong.
func (s *Service) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if apperr.IsAuthenticationFailure(err) {
			s.log.Info("login rejected")
		}
		return "", err
	}

	roles, err := s.users.GetRoles(ctx, user)
	if err != nil {
		return "", err
	}
	role := model.DefaultRole
	if len(roles) > 0 {
		role = roles[0]
	}

	signed, err := s.tokens.Issue(user, role)
	if err != nil {
		s.log.Error("token issuance failed", "userID", user.ID, "error", err)
		return "", err
	}
	return signed, nil
}

// AssignRoleToUser creates the role when missing and adds the membership when absent.
// Role creation failures are returned unchanged.
func (s *Service) AssignRoleToUser(ctx context.Context, email, roleName string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.roles.Ensure(ctx, roleName); err != nil {
		return err
	}
	in, err := s.users.IsInRole(ctx, user, roleName)
	if err != nil {
		return err
	}
	if in {
		return nil
	}
	if err := s.users.AddToRole(ctx, user, roleName); err != nil {
		return err
	}
	s.log.Info("role assigned", "userID", user.ID, "role", roleName)
	return nil
}

// SeedRoles makes sure every named role exists.
func (s *Service) SeedRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := s.roles.Ensure(ctx, name); err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}
	return nil
}
