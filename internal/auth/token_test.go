package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriyanb/artikel-be/internal/models"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", "artikel-test", time.Hour)

	user := models.User{ID: 42, Username: "wira", Role: models.RoleAdmin}
	signed, err := tokens.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	principal, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, models.RoleAdmin, principal.Role)
	assert.True(t, principal.IsAdmin())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokenManager("test-secret", "artikel-test", -time.Minute)

	signed, err := tokens.Generate(models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tokens := NewTokenManager("test-secret", "artikel-test", time.Hour)
	other := NewTokenManager("other-secret", "artikel-test", time.Hour)

	signed, err := tokens.Generate(models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokenManager("test-secret", "artikel-test", time.Hour)

	_, err := tokens.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
