package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veracare/marketplace-api/internal/model"
)

func testConfig() Config {
	return Config{
		Secret:             "access-secret",
		RefreshSecret:      "refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	}
}

func testUser() *model.User {
	return &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "dana@example.com",
		Role:  model.RolePractitioner,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testConfig())
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RolePractitioner, claims.Role)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	svc := NewJWTService(testConfig())
	user := testUser()

	refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	// A refresh token must not validate as an access token.
	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := NewJWTService(testConfig())

	other := NewJWTService(Config{
		Secret:      "some-other-secret",
		ExpiryHours: 1,
	})
	token, err := other.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.ExpiryHours = -1
	svc := NewJWTService(cfg)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService(testConfig())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
