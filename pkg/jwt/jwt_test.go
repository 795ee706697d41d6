package jwt

import (
	"testing"
	"time"

	"medique-api/config"

	"github.com/google/uuid"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(Principal{UserID: userID, Email: "a@b.com", Role: "user"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID || claims.Role != "user" || claims.TokenType != AccessToken {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token id = %q, want %q", claims.TokenID, tokenID)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject = %q, want user id", claims.Subject)
	}
}

func TestAdminSubject(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateRefreshToken(Principal{Email: "admin@medique.test", Role: "admin"})
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != AdminSubject {
		t.Errorf("subject = %q, want %q", claims.Subject, AdminSubject)
	}
	if claims.Principal().SubjectKey() != AdminSubject {
		t.Errorf("principal subject key = %q", claims.Principal().SubjectKey())
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("token type = %q, want refresh", claims.TokenType)
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := newTestService().GenerateAccessToken(Principal{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := NewJWTService(config.JWTConfig{Secret: "different", AccessExpiry: time.Minute})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: -time.Minute})
	token, _, err := svc.GenerateAccessToken(Principal{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
