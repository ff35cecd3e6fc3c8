package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	jwtService := NewJWTService("test-secret")

	pair, err := jwtService.GenerateTokenPair("abc123", RoleOrganization)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := jwtService.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.SubjectID)
	assert.Equal(t, RoleOrganization, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "rescueline", claims.Issuer)

	refreshClaims, err := jwtService.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	pair, err := NewJWTService("secret-a").GenerateTokenPair("abc123", RoleUser)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("test-secret").ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	jwtService := NewJWTService("test-secret")

	pair, err := jwtService.GenerateTokenPair("abc123", RoleVolunteer)
	require.NoError(t, err)

	t.Run("refresh token yields a fresh pair", func(t *testing.T) {
		newPair, err := jwtService.RefreshToken(pair.RefreshToken)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(newPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "abc123", claims.SubjectID)
		assert.Equal(t, RoleVolunteer, claims.Role)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		_, err := jwtService.RefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})
}
