package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, "user-1", true)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, claims.Privileged)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("right"), "user-1", false)
	require.NoError(t, err)

	_, err = ValidateToken([]byte("wrong"), token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken([]byte("secret"), "not-a-token")
	assert.Error(t, err)
}
