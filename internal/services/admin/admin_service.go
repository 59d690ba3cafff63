package admin

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ddanilkin/swapy-api/internal/config"
	"github.com/ddanilkin/swapy-api/internal/db"
	"github.com/ddanilkin/swapy-api/internal/middleware"
	"github.com/ddanilkin/swapy-api/internal/models"
	"github.com/ddanilkin/swapy-api/internal/notify"
	"github.com/ddanilkin/swapy-api/internal/utils"
)

// AdminService представляет сервис администрирования площадки
type AdminService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	notifier   *notify.Notifier
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(cfg *config.Config, notifier *notify.Notifier) *AdminService {
	return &AdminService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		notifier:   notifier,
	}
}

// GetDashboard возвращает сводные счетчики по площадке
func (s *AdminService) GetDashboard(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	var users, activeItems, pendingOffers, completedTrades, openReports int

	err := db.Pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM items WHERE status = 'active'),
            (SELECT COUNT(*) FROM offers WHERE status = 'pending'),
            (SELECT COUNT(*) FROM offers WHERE status = 'completed'),
            (SELECT COUNT(*) FROM reports WHERE status IN ('pending', 'investigating'))
    `).Scan(&users, &activeItems, &pendingOffers, &completedTrades, &openReports)
	if err != nil {
		log.Printf("Ошибка запроса статистики: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения статистики"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"users":            users,
			"active_items":     activeItems,
			"pending_offers":   pendingOffers,
			"completed_trades": completedTrades,
			"open_reports":     openReports,
		},
	})
}

// ListUsers возвращает список пользователей для администратора
func (s *AdminService) ListUsers(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
        SELECT id, COALESCE(email, ''), name, role, status, rating, total_trades, created_at
        FROM users`
	args := []any{}

	if status := c.Query("status"); status != "" {
		switch status {
		case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус: " + status})
		}
		args = append(args, status)
		query += ` WHERE status = $1`
	}

	limit, offset := utils.Pagination(c.Query("limit"), c.Query("offset"))
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса пользователей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения пользователей"})
	}
	defer rows.Close()

	users := []*models.Profile{}
	for rows.Next() {
		var p models.Profile
		err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.Status, &p.Rating, &p.TotalTrades, &p.CreatedAt)
		if err != nil {
			log.Printf("Ошибка чтения строки пользователя: %v", err)
			continue
		}
		users = append(users, &p)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"count":   len(users),
	})
}

// UpdateUserStatus меняет статус учетной записи пользователя
func (s *AdminService) UpdateUserStatus(c fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	switch requestData.Status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус: " + requestData.Status})
	}

	// Администратор не может заблокировать сам себя
	if adminID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя изменить статус собственной учетной записи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var email, name string
	tag, err := db.Pool.Exec(ctx, `
        UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2
    `, requestData.Status, userID)
	if err != nil {
		log.Printf("Ошибка обновления статуса пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления пользователя"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	err = db.Pool.QueryRow(ctx, `SELECT COALESCE(email, ''), name FROM users WHERE id = $1`, userID).Scan(&email, &name)
	if err != nil {
		log.Printf("Ошибка запроса контактов пользователя: %v", err)
	} else if email != "" {
		switch requestData.Status {
		case models.UserStatusSuspended:
			s.notifier.AccountSuspended(email, name, requestData.Notes)
		case models.UserStatusBanned:
			s.notifier.AccountBanned(email, name, requestData.Notes)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  requestData.Status,
	})
}

// RemoveItem снимает вещь с площадки решением администратора
func (s *AdminService) RemoveItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
        UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2 AND status != $1
    `, models.ItemStatusRemoved, itemID)
	if err != nil {
		log.Printf("Ошибка удаления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления вещи"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена или уже удалена"})
	}

	return c.JSON(fiber.Map{"success": true})
}
