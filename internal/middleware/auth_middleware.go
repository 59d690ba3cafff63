package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ddanilkin/swapy-api/internal/cache"
	"github.com/ddanilkin/swapy-api/internal/utils"
)

// UserID возвращает UUID текущего пользователя из контекста запроса.
// Ошибка означает, что маршрут обрабатывается без AuthMiddleware.
func UserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Отсутствует заголовок авторизации",
			})
		}

		// Проверяем Bearer токен
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Неверный формат заголовка авторизации",
			})
		}

		claims, err := jwtService.ParseToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Недействительный или просроченный токен",
			})
		}

		// Отозванные при выходе токены не принимаем
		if cache.IsTokenBlacklisted(c.Context(), claims.JTI) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Токен отозван",
			})
		}

		// Добавляем данные пользователя в контекст
		c.Locals("userID", claims.UserID.String())
		c.Locals("userRole", claims.Role)
		c.Locals("tokenJTI", claims.JTI)
		c.Locals("tokenExp", claims.ExpiresAt)

		return c.Next()
	}
}

// OptionalAuthMiddleware заполняет данные пользователя, если токен передан,
// но не требует его. Используется на публичных маршрутах.
func OptionalAuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Next()
		}

		claims, err := jwtService.ParseToken(parts[1])
		if err != nil || cache.IsTokenBlacklisted(c.Context(), claims.JTI) {
			return c.Next()
		}

		c.Locals("userID", claims.UserID.String())
		c.Locals("userRole", claims.Role)
		return c.Next()
	}
}

// AdminMiddleware пропускает только администраторов. Используется после AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		role, _ := c.Locals("userRole").(string)
		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Требуются права администратора",
			})
		}
		return c.Next()
	}
}
