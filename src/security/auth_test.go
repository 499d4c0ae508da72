package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService("test-secret", "admin", string(hash), time.Hour)
}

func TestAuthenticate(t *testing.T) {
	auth := newTestAuth(t)

	token, err := auth.Authenticate("admin", "s3nha")
	require.NoError(t, err)
	sub, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)

	_, err = auth.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate("root", "s3nha")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	auth := newTestAuth(t)

	other := NewAuthService("other-secret", "admin", auth.OperatorPasswordHash, time.Hour)
	foreign, err := other.GenerateToken("admin")
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(auth.JWTSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.Error(t, err)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	auth := newTestAuth(t)
	hash, err := auth.HashPassword("outra")
	require.NoError(t, err)
	assert.NoError(t, auth.CompareHashAndPassword(hash, "outra"))
	assert.Error(t, auth.CompareHashAndPassword(hash, "errada"))
}
