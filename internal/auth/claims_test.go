package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("tech-001", "Technician", testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "tech-001" {
		t.Errorf("Subject = %q, want tech-001", claims.Subject)
	}
	if claims.Role != "technician" {
		t.Errorf("Role = %q, want lower-cased technician", claims.Role)
	}
	if claims.IsAdmin() {
		t.Error("IsAdmin() = true for a technician")
	}
	if claims.ID == "" || claims.Issuer != issuer {
		t.Errorf("jti/iss = %q/%q", claims.ID, claims.Issuer)
	}

	diff := time.Until(claims.ExpiresAt.Time) - 15*time.Minute
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry off by %v", diff)
	}
}

func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	token, err := GenerateAccessToken("admin-1", "admin", testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if !claims.IsAdmin() {
		t.Error("IsAdmin() = false for admin")
	}

	diff := time.Until(claims.ExpiresAt.Time) - DefaultTTL
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("default TTL off by %v", diff)
	}
}

func TestGenerateAccessToken_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		role    string
		secret  string
		want    error
	}{
		{"short secret", "tech-1", "technician", "short", ErrSecretTooShort},
		{"empty subject", "", "technician", testSecret, ErrTokenInvalid},
		{"unknown role", "tech-1", "owner", testSecret, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateAccessToken(tt.subject, tt.role, tt.secret, time.Minute); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestParseToken_Invalid(t *testing.T) {
	valid, err := GenerateAccessToken("tech-1", "technician", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	past := time.Now().Add(-time.Hour)
	expired := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "tech-1", ExpiresAt: jwt.NewNumericDate(past)},
		Role:             "technician",
	})
	noExpiry := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "tech-1"},
		Role:             "technician",
	})
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	noSubject := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		Role:             "technician",
	})
	badRole := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "tech-1", ExpiresAt: future},
		Role:             "owner",
	})
	wrongAlg := sign(t, jwt.SigningMethodHS512, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "tech-1", ExpiresAt: future},
		Role:             "technician",
	})

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "another-secret-that-is-long-enough-000"},
		{"expired", expired, testSecret},
		{"no expiry", noExpiry, testSecret},
		{"no subject", noSubject, testSecret},
		{"unknown role", badRole, testSecret},
		{"wrong algorithm", wrongAlg, testSecret},
		{"garbage", "not-a-valid-jwt", testSecret},
		{"empty", "", testSecret},
		{"two segments", "abc.def", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
