package offer

import (
	"github.com/gofiber/fiber/v3"
	"github.com/ddanilkin/swapy-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *OfferService) SetupRoutes(app *fiber.App) {
	protected := app.Group("/api/offers")
	protected.Use(middleware.AuthMiddleware(s.jwtService))

	protected.Post("/", s.CreateOffer)
	protected.Get("/sent", s.GetSentOffers)
	protected.Get("/received", s.GetReceivedOffers)
	protected.Get("/item/:itemId", s.GetItemOffers)
	protected.Get("/:id", s.GetOffer)
	protected.Put("/:id/accept", s.AcceptOffer)
	protected.Put("/:id/reject", s.RejectOffer)
	protected.Patch("/:id/withdraw", s.WithdrawOffer)
	protected.Put("/:id/complete", s.CompleteOffer)
}
