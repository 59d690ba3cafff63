package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndParseToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("ожидался user_id %s, получен %s", userID, claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("ожидалась роль admin, получена %q", claims.Role)
	}
	if claims.JTI == "" {
		t.Error("ожидался непустой jti")
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("ожидался непустой срок действия")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	svc := NewJWTService("secret-one")
	token, err := svc.GenerateToken(uuid.New(), "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewJWTService("secret-two")
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("ожидалась ошибка при проверке чужим секретом")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")
	if _, err := svc.ParseToken("not-a-token"); err == nil {
		t.Fatal("ожидалась ошибка для мусорной строки")
	}
}
