package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k", ExpirationHours: 2})

	token, expiresAt, err := util.GenerateToken("emp-1", "a@b.c", "ADMIN")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims.EmployeeID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, _, err := NewJWTUtil(&JWTConfig{SigningKey: "one", ExpirationHours: 1}).GenerateToken("e", "x@y.z", "SELLER")
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "two", ExpirationHours: 1}).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k", ExpirationHours: 1})
	util.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	token, _, err := util.GenerateToken("e", "x@y.z", "SELLER")
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	claims := EmployeeClaims{EmployeeID: "e"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "k", ExpirationHours: 1}).ValidateToken(token)
	assert.Error(t, err)
}
