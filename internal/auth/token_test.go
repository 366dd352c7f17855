package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token := signed(t, jwt.MapClaims{"sub": "student@example.edu", "exp": exp.Unix()})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "student@example.edu", claims.Subject)
	assert.True(t, exp.Equal(claims.ExpiresAt))
	assert.False(t, claims.Expired(exp.Add(-time.Second)))
	assert.True(t, claims.Expired(exp))
}

func TestInspectAcceptsBearerPrefix(t *testing.T) {
	token := signed(t, jwt.MapClaims{"sub": "42"})

	assert.Equal(t, "42", Subject("Bearer "+token))
}

func TestInspectOpaqueToken(t *testing.T) {
	_, err := Inspect("opaque-session-token")
	require.ErrorIs(t, err, ErrNotJWT)

	_, err = Inspect("a.b.c")
	require.ErrorIs(t, err, ErrNotJWT)

	assert.Empty(t, Subject("opaque-session-token"))
}

func TestClaimsWithoutExpiryNeverExpire(t *testing.T) {
	claims, err := Inspect(signed(t, jwt.MapClaims{"sub": "x"}))
	require.NoError(t, err)

	assert.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour)))
}
