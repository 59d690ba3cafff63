package chat

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ddanilkin/swapy-api/internal/config"
)

// Обработчики чатов требуют авторизации. Если маршрут по ошибке
// зарегистрирован без AuthMiddleware, ответ должен быть 401, а не паника.
func TestChatHandlersWithoutAuth(t *testing.T) {
	service := NewChatService(&config.Config{JWTSecret: "s"}, nil)

	app := fiber.New()
	app.Get("/api/chat/unread/count", service.GetUnreadCount)
	app.Get("/api/chat/:offerId", service.GetChatMessages)
	app.Post("/api/chat/:offerId", service.SendMessage)
	app.Put("/api/chat/:offerId/mark-read", service.MarkRead)

	offerID := uuid.New().String()
	requests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/chat/unread/count"},
		{"GET", "/api/chat/" + offerID},
		{"POST", "/api/chat/" + offerID},
		{"PUT", "/api/chat/" + offerID + "/mark-read"},
	}

	for _, r := range requests {
		req := httptest.NewRequest(r.method, r.path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test %s %s: %v", r.method, r.path, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("%s %s: ожидался статус 401, получен %d", r.method, r.path, resp.StatusCode)
		}
	}
}
