package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := IssueAccess(42, "Ana Torres", "asistencias-app", "test-key", 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if exp.Before(time.Now()) {
		t.Fatal("expected future expiry")
	}

	claims, err := Parse(token, "test-key", "asistencias-app")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Name != "Ana Torres" {
		t.Errorf("expected name claim, got %q", claims.Name)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Errorf("expected subject 42, got %d (%v)", id, err)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	token, _, err := IssueAccess(1, "x", "asistencias-app", "key-a", time.Minute)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := Parse(token, "key-b", "asistencias-app"); err == nil {
		t.Fatal("expected error for wrong signing key")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, _, err := IssueAccess(1, "x", "someone-else", "key", time.Minute)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := Parse(token, "key", "asistencias-app"); err == nil {
		t.Fatal("expected error for issuer mismatch")
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secreto123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secreto123" {
		t.Fatal("expected hash, got plaintext")
	}
}
