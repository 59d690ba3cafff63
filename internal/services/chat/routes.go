package chat

import (
	"github.com/gofiber/fiber/v3"
	"github.com/ddanilkin/swapy-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/chat")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Статический маршрут регистрируется раньше параметризованных
	api.Get("/unread/count", s.GetUnreadCount)

	api.Get("/:offerId", s.GetChatMessages)
	api.Post("/:offerId", s.SendMessage)
	api.Put("/:offerId/mark-read", s.MarkRead)
}
