package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !hasher.Verify(hash, "s3cret") {
		t.Fatal("expected matching password to verify")
	}
	if hasher.Verify(hash, "wrong") {
		t.Fatal("wrong password must not verify")
	}
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	service := NewTokenService("test-secret", "chat-api", time.Hour)
	agentID := uuid.New()
	userID := uuid.New()

	token, expiresAt, err := service.Issue(agentID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expiry must be in the future")
	}

	claims, err := service.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.AgentID != agentID || claims.UserID != userID {
		t.Fatalf("claims = %+v, want agent %s user %s", claims, agentID, userID)
	}
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", "chat-api", time.Hour)
	verifier := NewTokenService("secret-b", "chat-api", time.Hour)

	token, _, err := issuer.Issue(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	service := NewTokenService("test-secret", "chat-api", time.Hour)
	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := service.Issue(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	service.now = time.Now
	if _, err := service.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenService("test-secret", "other-service", time.Hour)
	verifier := NewTokenService("test-secret", "chat-api", time.Hour)

	token, _, err := issuer.Issue(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	service := NewTokenService("test-secret", "chat-api", time.Hour)
	if _, err := service.Verify("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
