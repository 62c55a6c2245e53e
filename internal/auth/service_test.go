package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/db/dbtest"
	"github.com/losalerces/backend/internal/identity"
	"github.com/losalerces/backend/internal/model"
	"github.com/losalerces/backend/internal/token"
)

func newService(t *testing.T) (*Service, *token.Issuer, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	issuer, err := token.NewIssuer(config.JWTConfig{Key: "test-signing-key-test-signing-key", AccessTokenExpirationMinutes: "30"})
	require.NoError(t, err)
	users := identity.NewUserManager(db, identity.NewBcryptHasher(bcrypt.MinCost))
	roles := identity.NewRoleManager(db, nil)
	return NewService(db, users, roles, issuer, nil), issuer, db
}

func ana() RegisterInput {
	return RegisterInput{Email: "a@b.com", Password: "Secret123!", GivenName: "Ana", Surname: "Perez", Rut: "1-9"}
}

func TestRegisterThenLogin_EndToEnd(t *testing.T) {
	svc, issuer, _ := newService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, ana())
	require.NoError(t, err)
	assert.Equal(t, "1-9", user.Rut)

	roles, err := svc.users.GetRoles(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{model.DefaultRole}, roles)

	issuedAt := time.Now()
	signed, err := svc.LoginUser(ctx, "a@b.com", "Secret123!")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, model.DefaultRole, claims.Role)
	assert.Equal(t, "Ana", claims.GivenName)
	assert.Equal(t, "Perez", claims.FamilyName)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.WithinDuration(t, issuedAt.Add(30*time.Minute), claims.ExpiresAt.Time, 2*time.Second)
}

func TestRegister_DuplicateRut(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, ana())
	require.NoError(t, err)

	again := ana()
	again.Email = "otra@b.com"
	_, err = svc.RegisterUser(ctx, again)
	require.True(t, apperr.IsValidation(err), "got %v", err)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has(identity.CodeDuplicateRut))

	var n int64
	require.NoError(t, db.Model(&model.ApplicationUser{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	fresh := ana()
	fresh.Email = "otra@b.com"
	fresh.Rut = "2-7"
	_, err = svc.RegisterUser(ctx, fresh)
	require.NoError(t, err)
}

func TestRegister_WeakPasswordLeavesNoRows(t *testing.T) {
	svc, _, db := newService(t)

	in := ana()
	in.Password = "secret"
	_, err := svc.RegisterUser(context.Background(), in)
	require.True(t, apperr.IsValidation(err))

	var users, memberships int64
	require.NoError(t, db.Model(&model.ApplicationUser{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.UserRole{}).Count(&memberships).Error)
	assert.Zero(t, users)
	assert.Zero(t, memberships)
}

func TestRegister_OverlongPasswordIsValidation(t *testing.T) {
	svc, _, db := newService(t)

	in := ana()
	in.Password = "Aa1!" + strings.Repeat("x", 80)
	_, err := svc.RegisterUser(context.Background(), in)
	require.True(t, apperr.IsValidation(err), "got %v", err)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{identity.CodePasswordTooLong}, verr.Codes())

	var n int64
	require.NoError(t, db.Model(&model.ApplicationUser{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.RegisterUser(ctx, ana())
	require.NoError(t, err)

	tokWrong, errWrong := svc.LoginUser(ctx, "a@b.com", "Wrong123!")
	tokUnknown, errUnknown := svc.LoginUser(ctx, "nadie@b.com", "Secret123!")

	assert.Empty(t, tokWrong)
	assert.Empty(t, tokUnknown)
	require.True(t, apperr.IsAuthenticationFailure(errWrong))
	require.True(t, apperr.IsAuthenticationFailure(errUnknown))
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestAssignRoleToUser(t *testing.T) {
	svc, issuer, db := newService(t)
	ctx := context.Background()
	user, err := svc.RegisterUser(ctx, ana())
	require.NoError(t, err)

	require.NoError(t, svc.AssignRoleToUser(ctx, "a@b.com", "Administrador"))
	require.NoError(t, svc.AssignRoleToUser(ctx, "a@b.com", "Administrador"))

	var n int64
	require.NoError(t, db.Model(&model.UserRole{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	// Role claim is the first assigned role.
	signed, err := svc.LoginUser(ctx, "a@b.com", "Secret123!")
	require.NoError(t, err)
	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRole, claims.Role)

	err = svc.AssignRoleToUser(ctx, "nadie@b.com", "Administrador")
	require.True(t, apperr.IsNotFound(err))

	err = svc.AssignRoleToUser(ctx, "a@b.com", "   ")
	require.True(t, apperr.IsValidation(err), "role creation failure is returned as is, got %v", err)
}

func TestSeedRoles_Idempotent(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedRoles(ctx, model.DefaultRole, "Administrador"))
	require.NoError(t, svc.SeedRoles(ctx, model.DefaultRole))

	var n int64
	require.NoError(t, db.Model(&model.Role{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
