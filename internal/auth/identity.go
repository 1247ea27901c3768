package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SuhaniChatterjee/medstock-wise/internal/config"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityProvider resolves a bearer credential to the calling user.
type IdentityProvider interface {
	Verify(ctx context.Context, bearer string) (*domain.Identity, error)
}

// claims is the access token payload issued by the hosted auth service.
type claims struct {
	Email       string                 `json:"email"`
	Role        string                 `json:"role"`
	UserRole    string                 `json:"user_role"`
	AppMetadata map[string]interface{} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTVerifier(cfg config.AuthConfig) (*JWTVerifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret must be provided")
	}
	return &JWTVerifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Verify accepts either a raw token or an "Authorization" header value.
func (v *JWTVerifier) Verify(ctx context.Context, bearer string) (*domain.Identity, error) {
	raw := strings.TrimSpace(bearer)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthorized)
	}

	return &domain.Identity{
		UserID: userID,
		Email:  c.Email,
		Role:   domain.ParseRole(c.roleLabel()),
	}, nil
}

// roleLabel prefers the application role over the generic "authenticated" role
// the auth service puts in every token.
func (c *claims) roleLabel() string {
	if c.UserRole != "" {
		return c.UserRole
	}
	if r, ok := c.AppMetadata["role"].(string); ok && r != "" {
		return r
	}
	return c.Role
}

var _ IdentityProvider = (*JWTVerifier)(nil)
