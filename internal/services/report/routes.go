package report

import (
	"github.com/gofiber/fiber/v3"
	"github.com/ddanilkin/swapy-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *ReportService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/reports")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateReport)
	api.Get("/my", s.GetMyReports)
	api.Get("/:id", s.GetReport)

	// Администраторские маршруты рассмотрения жалоб
	admin := app.Group("/api/admin/reports")
	admin.Use(middleware.AuthMiddleware(s.jwtService))
	admin.Use(middleware.AdminMiddleware())

	admin.Get("/", s.AdminListReports)
	admin.Patch("/:id", s.AdminResolveReport)
}
