package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicadelvalle/agenda-api/config"
	"github.com/clinicadelvalle/agenda-api/internal/domain"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-0123",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "agenda-api-test",
	}
}

func testClaims() *domain.Claims {
	doctorID := uuid.New()
	return &domain.Claims{
		UserID:   uuid.New(),
		Email:    "doc@clinica.test",
		Role:     domain.RoleDoctor,
		DoctorID: &doctorID,
	}
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	in := testClaims()

	pair, err := m.GenerateTokenPair(in)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", pair.TokenType)
	}

	out, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if out.UserID != in.UserID {
		t.Errorf("UserID = %s, want %s", out.UserID, in.UserID)
	}
	if out.Role != domain.RoleDoctor {
		t.Errorf("Role = %s, want doctor", out.Role)
	}
	if out.DoctorID == nil || *out.DoctorID != *in.DoctorID {
		t.Errorf("DoctorID = %v, want %v", out.DoctorID, in.DoctorID)
	}

	if _, err := m.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	m := NewJWTManager(testConfig())

	pair, err := m.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := m.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("refresh as access error = %v, want ErrTokenTypeMismatch", err)
	}
	if _, err := m.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("access as refresh error = %v, want ErrTokenTypeMismatch", err)
	}
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	m := NewJWTManager(cfg)

	pair, err := m.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := m.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := NewJWTManager(testConfig())
	pair, err := m.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	other := testConfig()
	other.Secret = "a-completely-different-secret-456789"
	if _, err := NewJWTManager(other).ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := NewJWTManager(testConfig())
	for _, raw := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := m.ValidateAccessToken(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ValidateAccessToken(%q) error = %v, want ErrTokenInvalid", raw, err)
		}
	}
}
