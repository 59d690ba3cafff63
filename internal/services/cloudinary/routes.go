package cloudinary

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для загрузки изображений
func (s *CloudinaryService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api")

	protected := api.Group("/")
	protected.Use(authMiddleware)

	// Маршрут для получения параметров загрузки
	protected.Get("/upload/params", s.GenerateUploadParams)
}
