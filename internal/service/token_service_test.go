package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOpsSecret = "ops-secret-for-tests"

func mintOpsToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenService_ValidToken(t *testing.T) {
	svc := NewJWTTokenService(testOpsSecret)

	tokenStr := mintOpsToken(t, testOpsSecret, jwt.MapClaims{
		"sub": "ops:alex",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "ops:alex", claims.Subject)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService(testOpsSecret)

	tokenStr := mintOpsToken(t, "some-other-secret", jwt.MapClaims{
		"sub": "ops:alex",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := svc.Validate(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewJWTTokenService(testOpsSecret)

	tokenStr := mintOpsToken(t, testOpsSecret, jwt.MapClaims{
		"sub": "ops:alex",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := svc.Validate(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_MissingSubject(t *testing.T) {
	svc := NewJWTTokenService(testOpsSecret)

	tokenStr := mintOpsToken(t, testOpsSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := svc.Validate(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewJWTTokenService(testOpsSecret)

	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}
