package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kevann/nosteq-core/internal/technician"
)

const (
	// DefaultTTL applies when GenerateAccessToken gets a non-positive TTL.
	DefaultTTL = 60 * time.Minute

	// MinSecretLength matches the config validation rule.
	MinSecretLength = 32

	issuer = "nosteq-core"
)

// Claims is the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && strings.EqualFold(c.Role, technician.RoleAdmin)
}

// GenerateAccessToken signs a token for the given technician ID and role.
func GenerateAccessToken(subject, role, secret string, ttl time.Duration) (string, error) {
	if len(secret) < MinSecretLength {
		return "", fmt.Errorf("%w: need at least %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrTokenInvalid)
	}
	role, err := normaliseRole(role)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature, expiry and required claims of
// tokenString. Every failure wraps ErrTokenInvalid.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.Role, err = normaliseRole(claims.Role); err != nil {
		return nil, err
	}

	return claims, nil
}

func normaliseRole(role string) (string, error) {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case technician.RoleTechnician, technician.RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrTokenInvalid, role)
	}
}
