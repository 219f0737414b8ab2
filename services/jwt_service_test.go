package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servify-server/config"
	"servify-server/models"
)

func TestJWTService_RoundTrip(t *testing.T) {
	js := NewJWTService(config.JWTConfig{Secret: "s3cret", ExpiryHours: 24})
	user := &models.User{ID: 7, Role: models.RoleProfessional}

	token, err := js.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.Equal(t, int64(24*3600), token.ExpiresIn)

	claims, err := js.ValidateAccessToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "professional", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestJWTService_Rejects(t *testing.T) {
	js := NewJWTService(config.JWTConfig{Secret: "s3cret", ExpiryHours: 1})
	user := &models.User{ID: 3, Role: models.RoleClient}

	other := NewJWTService(config.JWTConfig{Secret: "another", ExpiryHours: 1})
	foreign, err := other.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = js.ValidateAccessToken(foreign.Token)
	assert.Error(t, err)

	expired := &JWTService{secret: []byte("s3cret"), ttl: -time.Hour}
	stale, err := expired.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = js.ValidateAccessToken(stale.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = js.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
