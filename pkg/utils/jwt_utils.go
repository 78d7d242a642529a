package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token issuers separate the staff and customer namespaces. A token minted for
// one namespace never validates in the other, even if both secrets matched.
const (
	StaffIssuer    = "petpos-staff"
	CustomerIssuer = "petpos-customer"
)

var ErrMissingSecret = errors.New("jwt secret is not configured")

// Subject revocations are compared against iat, so it has to resolve
// below one second.
func init() {
	jwt.TimePrecision = time.Millisecond
}

// Claims defines the JWT claims structure shared by both namespaces.
// Staff tokens fill UserID/Username/Role; customer tokens fill CustomerID/Phone.
type Claims struct {
	UserID     int64  `json:"user_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Role       string `json:"role,omitempty"`
	CustomerID int64  `json:"customer_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// NewStaffClaims builds claims for a staff user.
func NewStaffClaims(userID int64, username, role string) *Claims {
	return &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(userID, 10),
		},
	}
}

// NewCustomerClaims builds claims for a storefront customer.
func NewCustomerClaims(customerID int64, phone string) *Claims {
	return &Claims{
		CustomerID: customerID,
		Phone:      phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(customerID, 10),
		},
	}
}

// GenerateToken signs claims with HS256, stamping issuer, a fresh token id and the expiry window.
func GenerateToken(secret []byte, issuer string, claims *Claims, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims.Issuer = issuer
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string against secret and issuer.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string, secret []byte, issuer string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("token has no issued-at claim")
	}

	return claims, nil
}
