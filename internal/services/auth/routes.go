package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/ddanilkin/swapy-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)
	app.Post("/api/auth/telegram", s.TelegramAuthHandler)

	// Защищенные маршруты
	protected := app.Group("/api/auth")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Post("/logout", s.Logout)
	protected.Get("/me", s.Me)
	protected.Post("/change-password", s.ChangePassword)
}
