package jwt

import (
	"context"
	"testing"
	"time"

	"clinic-records/internal/adapters/auth/revocation"
	"clinic-records/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var _ auth.AuthVerifier = (*Tokens)(nil)

func TestNewTokens_RequiresKey(t *testing.T) {
	_, err := NewTokens(" ", "clinic", time.Hour, nil)
	require.ErrorIs(t, err, ErrNoSigningKey)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tk, err := NewTokens("secret", "clinic", time.Hour, nil)
	require.NoError(t, err)

	token, issued, err := tk.Issue("vet-1")
	require.NoError(t, err)
	require.NotEmpty(t, issued.TokenID)

	claims, err := tk.Verify(context.Background(), "  "+token+" ")
	require.NoError(t, err)
	require.Equal(t, "vet-1", claims.UserID)
	require.True(t, claims.IsStaff())
	require.Equal(t, issued.TokenID, claims.TokenID)
	require.True(t, issued.ExpiresAt.Equal(claims.ExpiresAt))
}

func TestVerify_Rejects(t *testing.T) {
	tk, _ := NewTokens("secret", "clinic", time.Hour, nil)
	other, _ := NewTokens("other-secret", "clinic", time.Hour, nil)
	wrongIssuer, _ := NewTokens("secret", "someone-else", time.Hour, nil)
	ctx := context.Background()

	_, err := tk.Verify(ctx, "")
	require.ErrorIs(t, err, ErrTokenEmpty)

	_, err = tk.Verify(ctx, "garbage")
	require.ErrorIs(t, err, ErrTokenInvalid)

	foreign, _, _ := other.Issue("vet-1")
	_, err = tk.Verify(ctx, foreign)
	require.ErrorIs(t, err, ErrTokenInvalid)

	misIssued, _, _ := wrongIssuer.Issue("vet-1")
	_, err = tk.Verify(ctx, misIssued)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// HS512 con la misma clave: algoritmo no permitido
	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, tokenClaims{
		Role: auth.RoleStaff,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "vet-1",
			Issuer:    "clinic",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tk.Verify(ctx, hs512)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Expired(t *testing.T) {
	tk, _ := NewTokens("secret", "clinic", time.Minute, nil)
	past := time.Now().Add(-time.Hour)
	tk.now = func() time.Time { return past }

	token, _, err := tk.Issue("vet-1")
	require.NoError(t, err)

	tk.now = time.Now
	_, err = tk.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevoke(t *testing.T) {
	trl := revocation.NewMemory()
	tk, _ := NewTokens("secret", "clinic", time.Hour, trl)
	ctx := context.Background()

	token, _, err := tk.Issue("vet-1")
	require.NoError(t, err)

	claims, err := tk.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, tk.Revoke(ctx, claims))
	_, err = tk.Verify(ctx, token)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// un token nuevo sigue valiendo
	fresh, _, _ := tk.Issue("vet-1")
	_, err = tk.Verify(ctx, fresh)
	require.NoError(t, err)
}

func TestAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	a := NewAuthenticator("admin", string(hash))
	require.NoError(t, a.Authenticate("admin", "s3cret"))
	require.ErrorIs(t, a.Authenticate("admin", "wrong"), ErrInvalidCredentials)
	require.ErrorIs(t, a.Authenticate("root", "s3cret"), ErrInvalidCredentials)

	unset := NewAuthenticator("", "")
	require.ErrorIs(t, unset.Authenticate("", ""), ErrInvalidCredentials)
}
