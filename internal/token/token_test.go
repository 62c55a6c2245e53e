package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/model"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{Key: "0123456789abcdef0123456789abcdef", AccessTokenExpirationMinutes: "60"}
}

func testUser() *model.ApplicationUser {
	return &model.ApplicationUser{ID: "user-1", Email: "a@b.com", Nombre: "Ana", Apellido: "Perez"}
}

func TestNewIssuer_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.JWTConfig
	}{
		{"missing key", config.JWTConfig{AccessTokenExpirationMinutes: "60"}},
		{"unparsable minutes", config.JWTConfig{Key: "k", AccessTokenExpirationMinutes: "sixty"}},
		{"zero minutes", config.JWTConfig{Key: "k", AccessTokenExpirationMinutes: "0"}},
		{"empty minutes", config.JWTConfig{Key: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIssuer(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestIssue_ClaimsAndExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenExpirationMinutes = "1.5"
	iss, err := NewIssuer(cfg)
	require.NoError(t, err)

	before := time.Now()
	signed, err := iss.Issue(testUser(), model.DefaultRole)
	require.NoError(t, err)

	claims, err := iss.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "Ana", claims.GivenName)
	assert.Equal(t, "Perez", claims.FamilyName)
	assert.Equal(t, model.DefaultRole, claims.Role)

	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, before.Add(90*time.Second), claims.ExpiresAt.Time, 2*time.Second)
	assert.Equal(t, 90*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestIssue_UsesHS256(t *testing.T) {
	iss, err := NewIssuer(testConfig())
	require.NoError(t, err)

	signed, err := iss.Issue(testUser(), "Admin")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(signed, &Claims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())
}

func TestParse_RejectsTamperedAndExpired(t *testing.T) {
	iss, err := NewIssuer(testConfig())
	require.NoError(t, err)

	signed, err := iss.Issue(testUser(), "Admin")
	require.NoError(t, err)

	other := testConfig()
	other.Key = "another-key-another-key-another-k"
	otherIss, err := NewIssuer(other)
	require.NoError(t, err)
	_, err = otherIss.Parse(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Parse(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIssuer_AudienceAndIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "losalerces-auth"
	cfg.Audience = "losalerces-core"
	iss, err := NewIssuer(cfg)
	require.NoError(t, err)

	signed, err := iss.Issue(testUser(), "Admin")
	require.NoError(t, err)
	claims, err := iss.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "losalerces-auth", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"losalerces-core"}, claims.Audience)
}
