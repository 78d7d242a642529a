package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	staffSecret    = []byte("staff-secret-for-tests")
	customerSecret = []byte("customer-secret-for-tests")
)

func TestGenerateAndValidateStaffToken(t *testing.T) {
	token, err := GenerateToken(staffSecret, StaffIssuer, NewStaffClaims(7, "alice", "cashier"), time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, staffSecret, StaffIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestCustomerTokenRejectedByStaffNamespace(t *testing.T) {
	token, err := GenerateToken(customerSecret, CustomerIssuer, NewCustomerClaims(3, "+15550001"), time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, staffSecret, StaffIssuer)
	assert.Error(t, err, "wrong secret")

	_, err = ValidateToken(token, customerSecret, StaffIssuer)
	assert.Error(t, err, "wrong issuer")

	claims, err := ValidateToken(token, customerSecret, CustomerIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.CustomerID)
	assert.Equal(t, "+15550001", claims.Phone)
}

func TestExpiredTokenFails(t *testing.T) {
	token, err := GenerateToken(staffSecret, StaffIssuer, NewStaffClaims(1, "bob", "admin"), -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, staffSecret, StaffIssuer)
	assert.Error(t, err)
}

func TestMalformedTokenFails(t *testing.T) {
	_, err := ValidateToken("not-a-jwt", staffSecret, StaffIssuer)
	assert.Error(t, err)

	_, err = GenerateToken(nil, StaffIssuer, NewStaffClaims(1, "bob", "admin"), time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenWithoutIssuedAtFails(t *testing.T) {
	claims := NewStaffClaims(1, "bob", "admin")
	claims.Issuer = StaffIssuer
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(staffSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, staffSecret, StaffIssuer)
	assert.Error(t, err)
}

func TestIssuedAtKeepsMilliseconds(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	token, err := GenerateToken(staffSecret, StaffIssuer, NewStaffClaims(1, "bob", "admin"), time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, staffSecret, StaffIssuer)
	require.NoError(t, err)
	assert.False(t, claims.IssuedAt.Time.Before(before), "iat %v rounded below %v", claims.IssuedAt.Time, before)
}
