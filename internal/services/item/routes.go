package item

import (
	"github.com/gofiber/fiber/v3"
	"github.com/ddanilkin/swapy-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *ItemService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/items")

	// Публичные маршруты. Токен не обязателен, но учитывается для
	// счетчика просмотров и признака избранного.
	api.Get("/", s.GetItems, middleware.OptionalAuthMiddleware(s.jwtService))
	api.Get("/config/categories", s.GetCategories)

	// Защищенные маршруты
	api.Post("/", s.CreateItem, middleware.AuthMiddleware(s.jwtService))
	api.Get("/my", s.GetMyItems, middleware.AuthMiddleware(s.jwtService))
	api.Get("/favorites", s.GetFavorites, middleware.AuthMiddleware(s.jwtService))

	api.Get("/:id", s.GetItem, middleware.OptionalAuthMiddleware(s.jwtService))
	api.Put("/:id", s.UpdateItem, middleware.AuthMiddleware(s.jwtService))
	api.Delete("/:id", s.DeleteItem, middleware.AuthMiddleware(s.jwtService))
	api.Post("/:id/favorite", s.ToggleFavorite, middleware.AuthMiddleware(s.jwtService))
}
