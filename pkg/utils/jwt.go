package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUnsupportedSigning = errors.New("unsupported signing algorithm")
)

// UserClaims is the payload of a user access token.
type UserClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ControlUnitClaims is the payload of a control-unit token. UnitID is kept as
// the raw string so callers can tell a malformed id from a mismatched one.
type ControlUnitClaims struct {
	UnitID string `json:"unit_id"`
	jwt.RegisteredClaims
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSigning, alg)
	}
}

// GenerateUserToken signs {sub, role, exp, iat} with the user secret.
func GenerateUserToken(userID uuid.UUID, role, secret, alg string, ttl time.Duration) (string, time.Time, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := UserClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign user token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseUserToken verifies signature and expiry and requires sub and role.
func ParseUserToken(tokenString, secret, alg string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parse(tokenString, secret, alg, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GenerateControlUnitToken signs {unit_id, exp, iat} with the control-unit secret.
func GenerateControlUnitToken(unitID, secret, alg string, ttl time.Duration) (string, time.Time, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := ControlUnitClaims{
		UnitID: unitID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign control unit token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseControlUnitToken verifies signature and expiry and requires unit_id.
func ParseControlUnitToken(tokenString, secret, alg string) (*ControlUnitClaims, error) {
	claims := &ControlUnitClaims{}
	if err := parse(tokenString, secret, alg, claims); err != nil {
		return nil, err
	}
	if claims.UnitID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func parse(tokenString, secret, alg string, claims jwt.Claims) error {
	if _, err := signingMethod(alg); err != nil {
		return err
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
