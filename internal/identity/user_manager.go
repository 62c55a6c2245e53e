package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/model"
)

type LockoutOptions struct {
	Enabled           bool
	MaxFailedAttempts int
	Duration          time.Duration
}

func DefaultLockoutOptions() LockoutOptions {
	return LockoutOptions{Enabled: true, MaxFailedAttempts: 5, Duration: 5 * time.Minute}
}

type UserManager struct {
	db      *gorm.DB
	hasher  PasswordHasher
	policy  PasswordPolicy
	lockout LockoutOptions
	now     func() time.Time
	log     *logger.Logger

	dummyOnce *sync.Once
	dummyHash *string
}

type Option func(*UserManager)

func WithPasswordPolicy(p PasswordPolicy) Option {
	return func(m *UserManager) { m.policy = p }
}

func WithLockout(o LockoutOptions) Option {
	return func(m *UserManager) { m.lockout = o }
}

func WithClock(now func() time.Time) Option {
	return func(m *UserManager) { m.now = now }
}

func WithLogger(log *logger.Logger) Option {
	return func(m *UserManager) { m.log = log }
}

func NewUserManager(db *gorm.DB, hasher PasswordHasher, opts ...Option) *UserManager {
	m := &UserManager{
		db:        db,
		hasher:    hasher,
		policy:    DefaultPasswordPolicy(),
		lockout:   DefaultLockoutOptions(),
		now:       time.Now,
		log:       logger.NewNop(),
		dummyOnce: &sync.Once{},
		dummyHash: new(string),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "UserManager")
	return m
}

// WithTx returns a manager bound to tx that shares configuration with m.
func (m *UserManager) WithTx(tx *gorm.DB) *UserManager {
	cp := *m
	cp.db = tx
	return &cp
}

func newStamp() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Create validates and stores user with a hash of password.
// UserName defaults to Email. All problems are reported together.
func (m *UserManager) Create(ctx context.Context, user *model.ApplicationUser, password string) error {
	user.Email = strings.TrimSpace(user.Email)
	if user.UserName == "" {
		user.UserName = user.Email
	}
	user.Rut = strings.TrimSpace(user.Rut)

	var reasons []apperr.Reason
	required := []struct{ name, value string }{
		{"Rut", user.Rut},
		{"Nombre", user.Nombre},
		{"Apellido", user.Apellido},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			reasons = append(reasons, apperr.Reason{Code: CodeRequiredField, Description: fmt.Sprintf("The %s field is required.", f.name)})
		}
	}
	if strings.TrimSpace(user.UserName) == "" {
		reasons = append(reasons, apperr.Reason{Code: CodeInvalidUserName, Description: "Username '' is invalid, can only contain letters or digits."})
	}
	if !validEmail(user.Email) {
		reasons = append(reasons, apperr.Reason{Code: CodeInvalidEmail, Description: fmt.Sprintf("Email '%s' is invalid.", user.Email)})
	}
	reasons = append(reasons, m.policy.Validate(password)...)

	dups, err := m.duplicates(ctx, user)
	if err != nil {
		return err
	}
	reasons = append(reasons, dups...)
	if len(reasons) > 0 {
		return apperr.Validation(reasons...)
	}

	hash, err := m.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	normalizedName := Normalize(user.UserName)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.NormalizedUserName = &normalizedName
	user.NormalizedEmail = Normalize(user.Email)
	user.PasswordHash = hash
	user.SecurityStamp = newStamp()
	user.ConcurrencyStamp = uuid.NewString()
	user.LockoutEnabled = m.lockout.Enabled

	// The savepoint keeps an enclosing transaction usable after a unique violation.
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return m.duplicateKeyError(ctx, user, err)
		}
		return fmt.Errorf("create user: %w", err)
	}
	m.log.Info("user created", "userID", user.ID)
	return nil
}

func (m *UserManager) duplicates(ctx context.Context, user *model.ApplicationUser) ([]apperr.Reason, error) {
	var reasons []apperr.Reason
	checks := []struct {
		column, value, code, description string
	}{
		{"normalized_user_name", Normalize(user.UserName), CodeDuplicateUserName, fmt.Sprintf("Username '%s' is already taken.", user.UserName)},
		{"normalized_email", Normalize(user.Email), CodeDuplicateEmail, fmt.Sprintf("Email '%s' is already taken.", user.Email)},
		{"rut", user.Rut, CodeDuplicateRut, fmt.Sprintf("Rut '%s' is already taken.", user.Rut)},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		var n int64
		if err := m.db.WithContext(ctx).Model(&model.ApplicationUser{}).Where(c.column+" = ?", c.value).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check %s: %w", c.column, err)
		}
		if n > 0 {
			reasons = append(reasons, apperr.Reason{Code: c.code, Description: c.description})
		}
	}
	return reasons, nil
}

// duplicateKeyError reports which unique value a concurrent registration took first.
func (m *UserManager) duplicateKeyError(ctx context.Context, user *model.ApplicationUser, cause error) error {
	reasons, err := m.duplicates(ctx, user)
	if err != nil {
		return err
	}
	if len(reasons) == 0 {
		return fmt.Errorf("create user: %w", cause)
	}
	return apperr.Validation(reasons...)
}

func (m *UserManager) findBy(ctx context.Context, column, value, key string) (*model.ApplicationUser, error) {
	var u model.ApplicationUser
	if err := m.db.WithContext(ctx).Where(column+" = ?", value).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", key)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (m *UserManager) FindByEmail(ctx context.Context, email string) (*model.ApplicationUser, error) {
	return m.findBy(ctx, "normalized_email", Normalize(email), email)
}

func (m *UserManager) FindByID(ctx context.Context, id string) (*model.ApplicationUser, error) {
	return m.findBy(ctx, "id", id, id)
}

func (m *UserManager) CheckPassword(user *model.ApplicationUser, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return m.hasher.Verify(user.PasswordHash, password)
}

// burnHash spends the same work as a real comparison so unknown emails are not faster to reject.
func (m *UserManager) burnHash(password string) {
	m.dummyOnce.Do(func() {
		h, err := m.hasher.Hash(uuid.NewString())
		if err == nil {
			*m.dummyHash = h
		}
	})
	if *m.dummyHash != "" {
		m.hasher.Verify(*m.dummyHash, password)
	}
}

// VerifyCredentials reports whether email/password identify an active user.
// Unknown email, wrong password and locked account all yield false with a nil error.
func (m *UserManager) VerifyCredentials(ctx context.Context, email, password string) (bool, error) {
	user, err := m.verify(ctx, email, password)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Authenticate returns the user on success and apperr.ErrAuthenticationFailure otherwise.
func (m *UserManager) Authenticate(ctx context.Context, email, password string) (*model.ApplicationUser, error) {
	user, err := m.verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrAuthenticationFailure
	}
	return user, nil
}

func (m *UserManager) verify(ctx context.Context, email, password string) (*model.ApplicationUser, error) {
	user, err := m.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			m.burnHash(password)
			return nil, nil
		}
		return nil, err
	}

	now := m.now().UTC()
	if user.IsLockedOut(now) {
		m.burnHash(password)
		m.log.Warn("login attempt on locked account", "userID", user.ID)
		return nil, nil
	}

	if !m.CheckPassword(user, password) {
		if err := m.accessFailed(ctx, user, now); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := m.accessSucceeded(ctx, user, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (m *UserManager) accessFailed(ctx context.Context, user *model.ApplicationUser, now time.Time) error {
	if !m.lockout.Enabled || !user.LockoutEnabled {
		return nil
	}
	updates := map[string]any{"access_failed_count": user.AccessFailedCount + 1}
	if user.AccessFailedCount+1 >= m.lockout.MaxFailedAttempts {
		end := now.Add(m.lockout.Duration)
		updates["lockout_end"] = end
		updates["access_failed_count"] = 0
		m.log.Warn("account locked out", "userID", user.ID, "until", end)
	}
	if err := m.db.WithContext(ctx).Model(&model.ApplicationUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("record failed access: %w", err)
	}
	return nil
}

func (m *UserManager) accessSucceeded(ctx context.Context, user *model.ApplicationUser, password string) error {
	updates := map[string]any{}
	if user.AccessFailedCount != 0 || user.LockoutEnd != nil {
		updates["access_failed_count"] = 0
		updates["lockout_end"] = nil
	}
	if m.hasher.NeedsRehash(user.PasswordHash) {
		hash, err := m.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("rehash password: %w", err)
		}
		updates["password_hash"] = hash
		user.PasswordHash = hash
	}
	if len(updates) == 0 {
		return nil
	}
	if err := m.db.WithContext(ctx).Model(&model.ApplicationUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("reset access count: %w", err)
	}
	user.AccessFailedCount = 0
	user.LockoutEnd = nil
	return nil
}

// AddToRole adds a membership in an existing role; an existing membership is left as is.
func (m *UserManager) AddToRole(ctx context.Context, user *model.ApplicationUser, roleName string) error {
	role, err := NewRoleManager(m.db, m.log).FindByName(ctx, roleName)
	if err != nil {
		return err
	}
	in, err := m.hasRole(ctx, user.ID, role.ID)
	if err != nil || in {
		return err
	}
	ur := model.UserRole{UserID: user.ID, RoleID: role.ID}
	if err := m.db.WithContext(ctx).Create(&ur).Error; err != nil {
		return fmt.Errorf("add user to role %q: %w", roleName, err)
	}
	return nil
}

func (m *UserManager) hasRole(ctx context.Context, userID, roleID string) (bool, error) {
	var n int64
	if err := m.db.WithContext(ctx).Model(&model.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

func (m *UserManager) IsInRole(ctx context.Context, user *model.ApplicationUser, roleName string) (bool, error) {
	var n int64
	err := m.db.WithContext(ctx).Model(&model.UserRole{}).
		Joins(`JOIN "Roles" ON "Roles".id = "UserRoles".role_id`).
		Where(`"UserRoles".user_id = ? AND "Roles".normalized_name = ?`, user.ID, Normalize(roleName)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("is in role: %w", err)
	}
	return n > 0, nil
}

// GetRoles returns role names in assignment order.
func (m *UserManager) GetRoles(ctx context.Context, user *model.ApplicationUser) ([]string, error) {
	var names []string
	err := m.db.WithContext(ctx).Model(&model.UserRole{}).
		Joins(`JOIN "Roles" ON "Roles".id = "UserRoles".role_id`).
		Where(`"UserRoles".user_id = ?`, user.ID).
		Order(`"UserRoles".created_at ASC, "Roles".name ASC`).
		Pluck(`"Roles".name`, &names).Error
	if err != nil {
		return nil, fmt.Errorf("get roles: %w", err)
	}
	return names, nil
}
