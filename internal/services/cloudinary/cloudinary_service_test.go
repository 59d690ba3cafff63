package cloudinary

import (
	"context"
	"testing"

	"github.com/ddanilkin/swapy-api/internal/config"
)

func TestSignUploadParamsDeterministic(t *testing.T) {
	cfg := &config.Config{
		CloudinaryConfig: config.CloudinaryConfig{
			CloudName:    "demo",
			APIKey:       "key",
			APISecret:    "secret",
			UploadPreset: "swapy_items",
		},
	}
	s := NewCloudinaryService(cfg)

	sig1, err := s.SignUploadParams("1700000000")
	if err != nil {
		t.Fatalf("SignUploadParams: %v", err)
	}
	sig2, err := s.SignUploadParams("1700000000")
	if err != nil {
		t.Fatalf("SignUploadParams: %v", err)
	}
	if sig1 == "" {
		t.Fatal("ожидалась непустая подпись")
	}
	if sig1 != sig2 {
		t.Error("подпись для одинаковых параметров должна совпадать")
	}

	sig3, err := s.SignUploadParams("1700000001")
	if err != nil {
		t.Fatalf("SignUploadParams: %v", err)
	}
	if sig1 == sig3 {
		t.Error("подпись должна зависеть от timestamp")
	}
}

func TestDestroyAssetWithoutClient(t *testing.T) {
	s := NewCloudinaryService(&config.Config{})
	// Без настроенного Cloudinary удаление должно быть no-op
	s.DestroyAsset(context.Background(), "some/public_id")
}
