package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.GenerateToken(7, "ana@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.StaffID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).GenerateToken(7, "ana@example.com", RoleStaff)
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	token, err := svc.GenerateToken(7, "ana@example.com", RoleStaff)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.Error(t, err)
}

// Each login mints a distinct token so a leaked old token cannot be told
// apart from a fresh one by equality.
func TestGenerateTokenFreshPerLogin(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	first, err := svc.GenerateToken(7, "ana@example.com", RoleStaff)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	second, err := svc.GenerateToken(7, "ana@example.com", RoleStaff)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
