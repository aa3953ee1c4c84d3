package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("signing-key", "user-1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("signing-key", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "postpilot", claims.Issuer)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	token, err := GenerateToken("signing-key", "user-1", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-key", token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("signing-key", "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("signing-key", token)
	assert.Error(t, err)
}
