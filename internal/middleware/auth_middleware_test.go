package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ddanilkin/swapy-api/internal/utils"
)

func newTestApp(jwtService *utils.JWTService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	}, AuthMiddleware(jwtService))

	app.Get("/admin", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, AuthMiddleware(jwtService), AdminMiddleware())
	return app
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	app := newTestApp(utils.NewJWTService("s"))

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	app := newTestApp(utils.NewJWTService("s"))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	jwtService := utils.NewJWTService("s")
	app := newTestApp(jwtService)

	token, err := jwtService.GenerateToken(uuid.New(), "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", resp.StatusCode)
	}
}

func TestUserIDFromContext(t *testing.T) {
	app := fiber.New()
	expected := uuid.New()

	app.Get("/with-user", func(c fiber.Ctx) error {
		got, err := UserID(c)
		if err != nil {
			t.Errorf("UserID: %v", err)
		}
		if got != expected {
			t.Errorf("ожидался %s, получен %s", expected, got)
		}
		return c.SendStatus(fiber.StatusOK)
	}, func(c fiber.Ctx) error {
		c.Locals("userID", expected.String())
		return c.Next()
	})

	// Маршрут без AuthMiddleware: userID в контексте отсутствует
	app.Get("/without-user", func(c fiber.Ctx) error {
		if _, err := UserID(c); err == nil {
			t.Error("ожидалась ошибка при отсутствии userID в контексте")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/with-user", "/without-user"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test %s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s: ожидался статус 200, получен %d", path, resp.StatusCode)
		}
	}
}

func TestAdminMiddlewareRejectsUser(t *testing.T) {
	jwtService := utils.NewJWTService("s")
	app := newTestApp(jwtService)

	token, _ := jwtService.GenerateToken(uuid.New(), "user")
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("ожидался статус 403, получен %d", resp.StatusCode)
	}
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	jwtService := utils.NewJWTService("s")
	app := newTestApp(jwtService)

	token, _ := jwtService.GenerateToken(uuid.New(), "admin")
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", resp.StatusCode)
	}
}
