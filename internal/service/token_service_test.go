package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() models.JWTClaims {
	return models.JWTClaims{
		UserID: "coord-1",
		Role:   models.RoleCoordinator,
		Email:  "coord@example.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "placement-portal",
			Audience:  jwt.ClaimStrings{"placement-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: testSecret, Issuer: "placement-portal", Audience: []string{"placement-api"}})

	claims, err := svc.ValidateToken(signTestToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: "coord-1", Role: models.RoleCoordinator}, claims.Actor())
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: testSecret, Issuer: "placement-portal", Audience: []string{"placement-api"}})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	badRole := validClaims()
	badRole.Role = "ADMIN"

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": signTestToken(t, "other-secret", validClaims()),
		"expired":      signTestToken(t, testSecret, expired),
		"wrong issuer": signTestToken(t, testSecret, wrongIssuer),
		"unknown role": signTestToken(t, testSecret, badRole),
	}
	for name, token := range cases {
		_, err := svc.ValidateToken(token)
		assert.True(t, errors.Is(err, appErrors.ErrUnauthorized), name)
	}
}
