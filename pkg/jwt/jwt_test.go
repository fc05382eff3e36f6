package jwt

import (
	"testing"
	"time"

	"clinic-front-desk/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret string, expiry time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: secret, AccessExpiry: expiry})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService("secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "alice", "front_desk")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "front_desk", claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newService("secret", time.Hour).GenerateAccessToken(uuid.New(), "alice", "admin")
	require.NoError(t, err)

	_, err = newService("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	svc := newService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(uuid.New(), "alice", "admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{UserID: uuid.New(), Username: "mallory"}
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims)
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService("secret", time.Hour).ValidateToken(signed)
	assert.Error(t, err)
}
