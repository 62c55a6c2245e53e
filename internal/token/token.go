// Package token issues and verifies the HS256 access tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	key      []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// NewIssuer fails when the signing key is empty or the expiration is not a positive number of minutes.
func NewIssuer(cfg config.JWTConfig) (*Issuer, error) {
	if cfg.Key == "" {
		return nil, errors.New("jwt.key is required")
	}
	ttl, err := cfg.AccessTokenTTL()
	if err != nil {
		return nil, err
	}
	return &Issuer{
		key:      []byte(cfg.Key),
		ttl:      ttl,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for user carrying role.
func (i *Issuer) Issue(user *model.ApplicationUser, role string) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		Email:      user.Email,
		GivenName:  user.Nombre,
		FamilyName: user.Apellido,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm and time claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithIssuedAt(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}
