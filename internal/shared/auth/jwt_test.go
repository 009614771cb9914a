package auth

import (
	"strings"
	"testing"
)

func TestJWTGenerateAndValidate(t *testing.T) {
	j := NewJWT("my-secret-key")

	token, err := j.Generate(123, "owner@example.com")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	claims, err := j.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if claims.OwnerID != 123 {
		t.Errorf("expected owner 123, got %d", claims.OwnerID)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("unexpected email %q", claims.Email)
	}
}

func TestJWTValidateRejectsTampering(t *testing.T) {
	j := NewJWT("my-secret-key")

	token, err := j.Generate(1, "a@b.c")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := j.Validate(tampered); err == nil {
		t.Error("expected error for tampered signature")
	}

	if _, err := j.Validate("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestJWTValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Generate(1, "a@b.c")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if _, err := NewJWT("secret-b").Validate(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}
