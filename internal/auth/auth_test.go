package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/rosterly-api/internal/config"
)

func testService(secret string, lifetime time.Duration) *Service {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = secret
	cfg.Auth.TokenLifetime = lifetime
	return NewService(cfg)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestTokenRoundtrip(t *testing.T) {
	svc := testService("test-secret", time.Hour)

	admin := &Admin{ID: uuid.New(), Email: "admin@rosterly.local"}
	token, err := svc.CreateToken(admin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.String(), claims.AdminID)
	assert.Equal(t, admin.Email, claims.Email)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := testService("issuer-secret", time.Hour)
	verifier := testService("other-secret", time.Hour)

	token, err := issuer.CreateToken(&Admin{ID: uuid.New(), Email: "admin@rosterly.local"})
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc := testService("test-secret", -time.Minute)

	token, err := svc.CreateToken(&Admin{ID: uuid.New(), Email: "admin@rosterly.local"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := testService("test-secret", time.Hour)
	_, err := svc.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestCreateTokenRequiresSecret(t *testing.T) {
	svc := testService("", time.Hour)
	_, err := svc.CreateToken(&Admin{ID: uuid.New()})
	assert.Error(t, err)
}
