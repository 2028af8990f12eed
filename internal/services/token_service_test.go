package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhive/internal/services"
)

const testJWTSecret = "test_jwt_secret"

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := services.NewTokenService(testJWTSecret, 0)

	first, err := tokens.Issue("user-123")
	require.NoError(t, err)
	second, err := tokens.Issue("user-123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "two logins produce distinct tokens")

	userID, err := tokens.Verify(first)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenService_ExpiresAfterThirtyDays(t *testing.T) {
	issuedAt := time.Now()
	tokens := services.NewTokenService(testJWTSecret, 0).WithClock(func() time.Time { return issuedAt })

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)

	almost := tokens.WithClock(func() time.Time { return issuedAt.Add(29 * 24 * time.Hour) })
	_, err = almost.Verify(token)
	assert.NoError(t, err)

	later := tokens.WithClock(func() time.Time { return issuedAt.Add(31 * 24 * time.Hour) })
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, services.ErrExpiredToken)
}

func TestTokenService_ExpiredTokenWithValidSignature(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = services.NewTokenService(testJWTSecret, 0).Verify(tokenString)
	assert.ErrorIs(t, err, services.ErrExpiredToken)
}

func TestTokenService_SignatureCheckedBeforeExpiry(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = services.NewTokenService(testJWTSecret, 0).Verify(tokenString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestTokenService_RejectsBadInput(t *testing.T) {
	tokens := services.NewTokenService(testJWTSecret, 0)
	valid, err := tokens.Issue("user-123")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user-123", "exp": time.Now().Add(time.Hour).Unix()})
	noneString, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, input := range map[string]string{
		"empty":       "",
		"garbage":     "invalid.token.string",
		"truncated":   valid[:len(valid)-5],
		"tampered":    tampered,
		"alg none":    noneString,
		"other key":   mustSign(t, "wrong", jwt.MapClaims{"user_id": "u", "exp": time.Now().Add(time.Hour).Unix()}),
		"no user id":  mustSign(t, testJWTSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		"no expiry":   mustSign(t, testJWTSecret, jwt.MapClaims{"user_id": "u"}),
		"two segment": parts[0] + "." + parts[1],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(input)
			assert.ErrorIs(t, err, services.ErrInvalidToken)
		})
	}
}

func TestTokenService_RotatedSecretInvalidatesTokens(t *testing.T) {
	token, err := services.NewTokenService("old-secret", 0).Issue("user-123")
	require.NoError(t, err)

	_, err = services.NewTokenService("new-secret", 0).Verify(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func mustSign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}
