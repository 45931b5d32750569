package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalforge/internal/config"
)

func TestAuthService(t *testing.T) {
	auth := NewAuthService(config.AuthConfig{
		HostUsername: "admin",
		HostPassword: "pw",
		JWTSecret:    "secret",
		TokenTTL:     time.Hour,
	})

	_, err := auth.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := auth.Login("admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, HostIDFor("admin"), resp.HostID)
	assert.Greater(t, resp.ExpiresAt, time.Now().Unix())

	again, err := auth.Login("admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, resp.HostID, again.HostID, "host id is stable across logins")

	claims, err := auth.ValidateHostToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.HostID, claims.HostID)

	_, err = auth.ValidateHostToken(resp.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(config.AuthConfig{JWTSecret: "other"})
	_, err = other.ValidateHostToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ExpiredToken(t *testing.T) {
	auth := NewAuthService(config.AuthConfig{JWTSecret: "secret", TokenTTL: -time.Minute})
	resp, err := auth.IssueToken("host_x")
	require.NoError(t, err)
	_, err = auth.ValidateHostToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
