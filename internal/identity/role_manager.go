package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/model"
)

type RoleManager struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoleManager(db *gorm.DB, log *logger.Logger) *RoleManager {
	if log == nil {
		log = logger.NewNop()
	}
	return &RoleManager{db: db, log: log.With("component", "RoleManager")}
}

// WithTx returns a manager bound to tx.
func (m *RoleManager) WithTx(tx *gorm.DB) *RoleManager {
	return &RoleManager{db: tx, log: m.log}
}

func (m *RoleManager) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := m.db.WithContext(ctx).Where("normalized_name = ?", Normalize(name)).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Role", name)
		}
		return nil, fmt.Errorf("find role %q: %w", name, err)
	}
	return &role, nil
}

func (m *RoleManager) RoleExists(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := m.db.WithContext(ctx).Model(&model.Role{}).Where("normalized_name = ?", Normalize(name)).Count(&n).Error; err != nil {
		return false, fmt.Errorf("role exists %q: %w", name, err)
	}
	return n > 0, nil
}

// Create fails with a ValidationError when the name is blank or already taken.
func (m *RoleManager) Create(ctx context.Context, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(apperr.Reason{Code: CodeInvalidRoleName, Description: "Role name '' is invalid."})
	}
	exists, err := m.RoleExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation(apperr.Reason{
			Code:        CodeDuplicateRoleName,
			Description: fmt.Sprintf("Role name '%s' is already taken.", name),
		})
	}

	normalized := Normalize(name)
	role := model.Role{
		ID:               uuid.NewString(),
		Name:             name,
		NormalizedName:   &normalized,
		ConcurrencyStamp: uuid.NewString(),
	}
	if err := m.db.WithContext(ctx).Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation(apperr.Reason{
				Code:        CodeDuplicateRoleName,
				Description: fmt.Sprintf("Role name '%s' is already taken.", name),
			})
		}
		return nil, fmt.Errorf("create role %q: %w", name, err)
	}
	m.log.Info("role created", "role", name)
	return &role, nil
}

// Ensure creates the role when it is missing and returns it either way.
func (m *RoleManager) Ensure(ctx context.Context, name string) (*model.Role, error) {
	role, err := m.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}
	role, err = m.Create(ctx, name)
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) && verr.Has(CodeDuplicateRoleName) {
			// lost a race with a concurrent Ensure
			return m.FindByName(ctx, name)
		}
		return nil, err
	}
	return role, nil
}
