package auth

import (
	"strings"
	"testing"
	"time"
)

func TestNewSessionToken(t *testing.T) {
	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	// 32 random bytes base64url-encoded without padding.
	if len(token) != 43 {
		t.Errorf("token length = %d, want 43", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token %q should be URL-safe", token)
	}
}

func TestNewSessionToken_Unique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatalf("token generation failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[token] = true
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	secret := "unit-test-secret"
	token, err := SignResetToken(secret, "3c6880c2-6f10-4f8c-9a0e-51e1ad5e7a01", 30*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := ParseResetToken(secret, token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "3c6880c2-6f10-4f8c-9a0e-51e1ad5e7a01" {
		t.Errorf("UserID = %q", claims.UserID)
	}
}

func TestResetToken_Expired(t *testing.T) {
	secret := "unit-test-secret"
	token, err := SignResetToken(secret, "uid", -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseResetToken(secret, token); err == nil {
		t.Error("expired token should not parse")
	}
}

func TestResetToken_WrongSecret(t *testing.T) {
	token, err := SignResetToken("secret-a", "uid", 30*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseResetToken("secret-b", token); err == nil {
		t.Error("token signed with a different secret should not parse")
	}
	if _, err := ParseResetToken("secret-a", "garbage.token.value"); err == nil {
		t.Error("garbage token should not parse")
	}
}
