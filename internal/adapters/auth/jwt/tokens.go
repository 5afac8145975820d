// Package jwt emite y verifica los tokens de sesión de staff (HS256).
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-records/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
	ErrNoSigningKey = errors.New("jwt signing key not configured")
)

type tokenClaims struct {
	Role string `json:"role"`
	gojwt.RegisteredClaims
}

// Tokens implementa auth.AuthVerifier y además emite tokens.
// revocations es opcional: sin lista, un token vale hasta su expiración.
type Tokens struct {
	signingKey  []byte
	issuer      string
	ttl         time.Duration
	revocations auth.RevocationList
	now         func() time.Time
}

func NewTokens(signingKey, issuer string, ttl time.Duration, revocations auth.RevocationList) (*Tokens, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, ErrNoSigningKey
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Tokens{
		signingKey:  []byte(signingKey),
		issuer:      issuer,
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}, nil
}

// Issue firma un token de staff para userID.
func (t *Tokens) Issue(userID string) (string, auth.Claims, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	jti := uuid.NewString()

	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, tokenClaims{
		Role: auth.RoleStaff,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(exp),
			ID:        jti,
		},
	})

	signed, err := tok.SignedString(t.signingKey)
	if err != nil {
		return "", auth.Claims{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, auth.Claims{
		UserID:    userID,
		Role:      auth.RoleStaff,
		TokenID:   jti,
		ExpiresAt: gojwt.NewNumericDate(exp).Time,
	}, nil
}

func (t *Tokens) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(t.issuer))
	}

	var tc tokenClaims
	parsed, err := gojwt.ParseWithClaims(token, &tc, func(*gojwt.Token) (any, error) {
		return t.signingKey, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	claims := auth.Claims{
		UserID:  strings.TrimSpace(tc.Subject),
		Role:    tc.Role,
		TokenID: tc.ID,
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	if claims.UserID == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	if t.revocations != nil && claims.TokenID != "" {
		revoked, err := t.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return auth.Claims{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return auth.Claims{}, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Revoke invalida el token hasta su expiración natural.
func (t *Tokens) Revoke(ctx context.Context, claims auth.Claims) error {
	if t.revocations == nil || claims.TokenID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	return t.revocations.Revoke(ctx, claims.TokenID, ttl)
}
