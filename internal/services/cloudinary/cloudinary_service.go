package cloudinary

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"

	"github.com/ddanilkin/swapy-api/internal/config"
)

// CloudinaryService предоставляет методы для работы с Cloudinary.
// Клиент загружает изображения напрямую в Cloudinary по подписанным параметрам,
// API хранит только итоговые URL и public_id.
type CloudinaryService struct {
	cfg          *config.Config
	cld          *cloudinary.Cloudinary
	uploadPreset string
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg *config.Config) *CloudinaryService {
	s := &CloudinaryService{
		cfg:          cfg,
		uploadPreset: cfg.CloudinaryConfig.UploadPreset,
	}

	if cfg.CloudinaryConfig.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			cfg.CloudinaryConfig.CloudName,
			cfg.CloudinaryConfig.APIKey,
			cfg.CloudinaryConfig.APISecret,
		)
		if err != nil {
			log.Printf("⚠️ Ошибка инициализации Cloudinary: %v", err)
		} else {
			s.cld = cld
		}
	}

	return s
}

// SignUploadParams создаёт подпись для прямой загрузки с клиента
func (s *CloudinaryService) SignUploadParams(timestamp string) (string, error) {
	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("upload_preset", s.uploadPreset)

	return api.SignParameters(params, s.cfg.CloudinaryConfig.APISecret)
}

// GenerateUploadParams возвращает клиенту параметры для загрузки изображений
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	signature, err := s.SignUploadParams(timestamp)
	if err != nil {
		log.Printf("Ошибка создания подписи Cloudinary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания подписи"})
	}

	return c.JSON(fiber.Map{
		"timestamp":     timestamp,
		"signature":     signature,
		"api_key":       s.cfg.CloudinaryConfig.APIKey,
		"cloud_name":    s.cfg.CloudinaryConfig.CloudName,
		"upload_preset": s.uploadPreset,
	})
}

// DestroyAsset удаляет изображение из Cloudinary. Ошибка логируется и
// не прерывает основную операцию.
func (s *CloudinaryService) DestroyAsset(ctx context.Context, publicID string) {
	if s.cld == nil || publicID == "" {
		return
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		log.Printf("Ошибка удаления изображения %s из Cloudinary: %v", publicID, err)
	}
}
