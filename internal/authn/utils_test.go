package authn

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestParseClaims(t *testing.T) {
	token := signed(t, Claims{
		StandardClaims: jwt.StandardClaims{Subject: "7", ExpiresAt: time.Now().Add(time.Hour).Unix()},
		Email:          "lecturer@example.com",
		Role:           "Lecturer",
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "lecturer@example.com", claims.Email)
	assert.Equal(t, "Lecturer", claims.Role)
}

func TestParseClaims_NotAJWT(t *testing.T) {
	_, err := ParseClaims("opaque-token")
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token := signed(t, Claims{StandardClaims: jwt.StandardClaims{ExpiresAt: exp.Unix()}})

	got, ok := Expiry(token)
	assert.True(t, ok)
	assert.Equal(t, exp, got)

	_, ok = Expiry("opaque-token")
	assert.False(t, ok)

	_, ok = Expiry(signed(t, Claims{Email: "no-exp@example.com"}))
	assert.False(t, ok)
}
