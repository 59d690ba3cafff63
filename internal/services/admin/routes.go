package admin

import (
	"github.com/gofiber/fiber/v3"
	"github.com/ddanilkin/swapy-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AdminService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/admin")
	api.Use(middleware.AuthMiddleware(s.jwtService))
	api.Use(middleware.AdminMiddleware())

	api.Get("/dashboard", s.GetDashboard)
	api.Get("/users", s.ListUsers)
	api.Patch("/users/:id/status", s.UpdateUserStatus)
	api.Delete("/items/:id", s.RemoveItem)
}
