package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(42, "reader@example.com", []string{RoleUser})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.True(t, claims.HasRole(RoleUser))
	assert.False(t, claims.HasRole(RoleAdmin))
}

func TestManager_RefreshTokenIsNotAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken(1, "a@example.com", []string{RoleAdmin})
	require.NoError(t, err)

	_, err = m.ParseToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.RefreshAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	access, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)
	claims, err := m.ParseToken(access)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(RoleAdmin))
}

func TestManager_ExpiredAndForeignTokens(t *testing.T) {
	expired := NewManager("test-secret", -time.Minute, time.Hour)
	pair, err := expired.GenerateToken(1, "a@example.com", nil)
	require.NoError(t, err)

	_, err = expired.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	other := NewManager("another-secret", time.Hour, time.Hour)
	pair, err = other.GenerateToken(1, "a@example.com", nil)
	require.NoError(t, err)

	m := NewManager("test-secret", time.Hour, time.Hour)
	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestManager_ParseRefreshToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken(7, "a@example.com", []string{RoleUser})
	require.NoError(t, err)

	claims, err := m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.Type)

	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestClaims_IssuedBefore(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken(7, "a@example.com", []string{RoleUser})
	require.NoError(t, err)
	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)

	assert.False(t, claims.IssuedBefore(time.Time{}))
	assert.False(t, claims.IssuedBefore(claims.IssuedAt.Time))
	assert.True(t, claims.IssuedBefore(time.Now().Add(time.Minute)))
}
