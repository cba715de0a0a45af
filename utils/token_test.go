package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(42, "secret")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateSessionToken(token, "secret")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, err := GenerateSessionToken(42, "secret")
	assert.NoError(t, err)

	_, err = ValidateSessionToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateSessionToken_Garbage(t *testing.T) {
	_, err := ValidateSessionToken("not.a.token", "secret")
	assert.Error(t, err)

	_, err = ValidateSessionToken("", "secret")
	assert.Error(t, err)
}

func TestValidateSessionToken_Expired(t *testing.T) {
	claims := Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	assert.NoError(t, err)

	_, err = ValidateSessionToken(signed, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGenerateResetToken(t *testing.T) {
	first, err := GenerateResetToken()
	assert.NoError(t, err)
	// 32 random bytes hex encoded
	assert.Len(t, first, 64)

	second, err := GenerateResetToken()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}
