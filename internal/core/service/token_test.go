package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("secret", "portfolio-api", time.Hour)
	user := &domain.User{ID: "u1", Email: "admin@example.com", Role: domain.RoleAdmin}

	token, expiresAt, err := m.Issue(user)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if d := time.Until(expiresAt); d < 59*time.Minute || d > time.Hour {
		t.Errorf("unexpected expiry distance: %v", d)
	}

	identity, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.UserID != "u1" || identity.Email != "admin@example.com" || identity.Role != domain.RoleAdmin {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestTokenManager_ClaimsCarryRegisteredFields(t *testing.T) {
	m := NewTokenManager("secret", "portfolio-api", time.Hour)
	token, _, err := m.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.Subject != "u1" || claims.Issuer != "portfolio-api" {
		t.Errorf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
	if claims.ID == "" {
		t.Error("expected a jti")
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", "portfolio-api", time.Hour)
	m.now = fixedClock(time.Now().Add(-2 * time.Hour))

	token, _, err := m.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsWrongSecretAndIssuer(t *testing.T) {
	issuer := NewTokenManager("secret", "portfolio-api", time.Hour)
	token, _, _ := issuer.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})

	if _, err := NewTokenManager("other", "portfolio-api", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("wrong secret: expected ErrInvalidToken, got %v", err)
	}
	if _, err := NewTokenManager("secret", "someone-else", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("wrong issuer: expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager("secret", "portfolio-api", time.Hour)
	claims := Claims{
		UserID: "u1",
		Role:   string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portfolio-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}
}

func TestTokenManager_RejectsUnknownRoleAndMissingExpiry(t *testing.T) {
	m := NewTokenManager("secret", "portfolio-api", time.Hour)

	sign := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	superuser := sign(Claims{
		UserID: "u1",
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portfolio-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := m.Verify(superuser); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("unknown role: expected ErrInvalidToken, got %v", err)
	}

	noExpiry := sign(Claims{
		UserID:           "u1",
		Role:             string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "portfolio-api"},
	})
	if _, err := m.Verify(noExpiry); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("missing exp: expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	m := NewTokenManager("secret", "portfolio-api", time.Hour)
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
