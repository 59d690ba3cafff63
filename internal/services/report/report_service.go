package report

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ddanilkin/swapy-api/internal/config"
	"github.com/ddanilkin/swapy-api/internal/db"
	"github.com/ddanilkin/swapy-api/internal/middleware"
	"github.com/ddanilkin/swapy-api/internal/models"
	"github.com/ddanilkin/swapy-api/internal/notify"
	"github.com/ddanilkin/swapy-api/internal/utils"
)

// ReportService представляет сервис для работы с жалобами
type ReportService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	notifier   *notify.Notifier
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(cfg *config.Config, notifier *notify.Notifier) *ReportService {
	return &ReportService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		notifier:   notifier,
	}
}

const reportColumns = `r.id, r.reported_by, r.report_type, r.target_type, r.target_id, r.description,
	r.evidence, r.chat_history, r.status, r.admin_notes, r.action_taken, r.resolved_by, r.resolved_at,
	r.created_at, r.updated_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var r models.Report
	err := row.Scan(
		&r.ID, &r.ReportedBy, &r.ReportType, &r.TargetType, &r.TargetID, &r.Description,
		&r.Evidence, &r.ChatHistory, &r.Status, &r.AdminNotes, &r.ActionTaken, &r.ResolvedBy, &r.ResolvedAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// targetExists проверяет существование объекта жалобы
func targetExists(ctx context.Context, targetType string, targetID uuid.UUID) (bool, error) {
	var query string
	switch targetType {
	case "user":
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	case "item":
		query = `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`
	case "offer":
		query = `SELECT EXISTS (SELECT 1 FROM offers WHERE id = $1)`
	default:
		return false, nil
	}

	var exists bool
	err := db.Pool.QueryRow(ctx, query, targetID).Scan(&exists)
	return exists, err
}

// CreateReport создает жалобу на пользователя, вещь или предложение
func (s *ReportService) CreateReport(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		ReportType  string             `json:"report_type"`
		TargetType  string             `json:"target_type"`
		TargetID    string             `json:"target_id"`
		Description string             `json:"description"`
		Evidence    []models.ItemImage `json:"evidence"`
		ChatHistory string             `json:"chat_history"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if !models.ValidReportTypes[requestData.ReportType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый тип жалобы"})
	}
	if !models.ValidTargetTypes[requestData.TargetType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый тип объекта жалобы"})
	}
	if strings.TrimSpace(requestData.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Описание жалобы обязательно"})
	}

	targetID, err := uuid.Parse(requestData.TargetID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объекта жалобы"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	exists, err := targetExists(ctx, requestData.TargetType, targetID)
	if err != nil {
		log.Printf("Ошибка проверки объекта жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки объекта жалобы"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объект жалобы не найден"})
	}

	if requestData.Evidence == nil {
		requestData.Evidence = []models.ItemImage{}
	}

	reportID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO reports (id, reported_by, report_type, target_type, target_id, description, evidence, chat_history)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, reportID, userID, requestData.ReportType, requestData.TargetType, targetID,
		requestData.Description, requestData.Evidence, requestData.ChatHistory)

	if err != nil {
		// Частичный уникальный индекс не допускает вторую открытую жалобу на тот же объект
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "У вас уже есть нерассмотренная жалоба на этот объект"})
		}
		log.Printf("Ошибка создания жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания жалобы"})
	}

	// Уведомляем администраторов
	s.notifyAdmins(ctx, requestData.ReportType, requestData.TargetType)

	report, err := scanReport(db.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports r WHERE r.id = $1`, reportID))
	if err != nil {
		log.Printf("Ошибка чтения созданной жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка чтения жалобы"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}

// GetMyReports возвращает жалобы, поданные пользователем
func (s *ReportService) GetMyReports(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT `+reportColumns+` FROM reports r WHERE r.reported_by = $1 ORDER BY r.created_at DESC
    `, userID)
	if err != nil {
		log.Printf("Ошибка запроса жалоб: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения жалоб"})
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			log.Printf("Ошибка чтения строки жалобы: %v", err)
			continue
		}
		reports = append(reports, report)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reports": reports,
		"count":   len(reports),
	})
}

// GetReport возвращает жалобу. Доступно ее автору и администраторам.
func (s *ReportService) GetReport(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}
	role, _ := c.Locals("userRole").(string)

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID жалобы"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	report, err := scanReport(db.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports r WHERE r.id = $1`, reportID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Жалоба не найдена"})
		}
		log.Printf("Ошибка запроса жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения жалобы"})
	}

	if report.ReportedBy != userID && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Доступ к чужой жалобе запрещен"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}

// AdminListReports возвращает список жалоб с фильтрами для администратора
func (s *ReportService) AdminListReports(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
        SELECT ` + reportColumns + `,
            u.id, u.name, u.avatar_url, u.city, u.district, u.rating, u.total_trades
        FROM reports r
        JOIN users u ON u.id = r.reported_by
        WHERE 1=1`
	args := []any{}

	if status := c.Query("status"); status != "" {
		switch status {
		case models.ReportStatusPending, models.ReportStatusInvestigating,
			models.ReportStatusResolved, models.ReportStatusDismissed:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус: " + status})
		}
		args = append(args, status)
		query += ` AND r.status = $` + strconv.Itoa(len(args))
	}
	if reportType := c.Query("type"); reportType != "" {
		if !models.ValidReportTypes[reportType] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый тип жалобы: " + reportType})
		}
		args = append(args, reportType)
		query += ` AND r.report_type = $` + strconv.Itoa(len(args))
	}

	limit, offset := utils.Pagination(c.Query("limit"), c.Query("offset"))
	query += ` ORDER BY r.created_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса жалоб: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения жалоб"})
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		var r models.Report
		var reporter models.User
		err := rows.Scan(
			&r.ID, &r.ReportedBy, &r.ReportType, &r.TargetType, &r.TargetID, &r.Description,
			&r.Evidence, &r.ChatHistory, &r.Status, &r.AdminNotes, &r.ActionTaken, &r.ResolvedBy, &r.ResolvedAt,
			&r.CreatedAt, &r.UpdatedAt,
			&reporter.ID, &reporter.Name, &reporter.AvatarURL, &reporter.City, &reporter.District, &reporter.Rating, &reporter.TotalTrades,
		)
		if err != nil {
			log.Printf("Ошибка чтения строки жалобы: %v", err)
			continue
		}
		r.Reporter = &reporter
		reports = append(reports, &r)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reports": reports,
		"count":   len(reports),
	})
}

// AdminResolveReport обновляет статус жалобы и применяет выбранную меру
func (s *ReportService) AdminResolveReport(c fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID жалобы"})
	}

	var requestData struct {
		Status      string `json:"status"`
		AdminNotes  string `json:"admin_notes"`
		ActionTaken string `json:"action_taken"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	switch requestData.Status {
	case models.ReportStatusInvestigating, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус жалобы"})
	}
	if requestData.ActionTaken == "" {
		requestData.ActionTaken = "none"
	}
	if !models.ValidActions[requestData.ActionTaken] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимая мера: " + requestData.ActionTaken})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	report, err := scanReport(db.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports r WHERE r.id = $1`, reportID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Жалоба не найдена"})
		}
		log.Printf("Ошибка запроса жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения жалобы"})
	}

	if report.Status == models.ReportStatusResolved || report.Status == models.ReportStatusDismissed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Жалоба уже рассмотрена"})
	}

	var resolvedBy *uuid.UUID
	var resolvedAt *time.Time
	if requestData.Status == models.ReportStatusResolved || requestData.Status == models.ReportStatusDismissed {
		now := time.Now()
		resolvedBy = &adminID
		resolvedAt = &now
	}

	// Обновление завязано на прежний статус, чтобы два администратора
	// не рассмотрели одну жалобу одновременно
	tag, err := db.Pool.Exec(ctx, `
        UPDATE reports SET status = $1, admin_notes = $2, action_taken = $3,
            resolved_by = $4, resolved_at = $5, updated_at = NOW()
        WHERE id = $6 AND status = $7
    `, requestData.Status, requestData.AdminNotes, requestData.ActionTaken,
		resolvedBy, resolvedAt, reportID, report.Status)
	if err != nil {
		log.Printf("Ошибка обновления жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления жалобы"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Жалоба уже рассмотрена"})
	}

	s.applyAction(ctx, report, requestData.ActionTaken, requestData.AdminNotes)

	// Уведомляем автора жалобы об итоге рассмотрения
	if requestData.Status == models.ReportStatusResolved || requestData.Status == models.ReportStatusDismissed {
		if email, name := userContact(ctx, report.ReportedBy); email != "" {
			s.notifier.ReportResolved(email, name, requestData.Status == models.ReportStatusResolved, requestData.AdminNotes)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  requestData.Status,
		"action":  requestData.ActionTaken,
	})
}

// applyAction применяет меру к объекту жалобы. Ошибки логируются,
// но не прерывают рассмотрение.
func (s *ReportService) applyAction(ctx context.Context, report *models.Report, action, notes string) {
	targetUserID, ok := s.resolveTargetUser(ctx, report)

	switch action {
	case "warning_sent":
		if !ok {
			return
		}
		if email, name := userContact(ctx, targetUserID); email != "" {
			s.notifier.AccountWarning(email, name, notes)
		}

	case "user_suspended", "user_banned":
		if !ok {
			return
		}
		newStatus := models.UserStatusSuspended
		if action == "user_banned" {
			newStatus = models.UserStatusBanned
		}
		_, err := db.Pool.Exec(ctx, `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, newStatus, targetUserID)
		if err != nil {
			log.Printf("Ошибка блокировки пользователя %s: %v", targetUserID, err)
			return
		}
		if email, name := userContact(ctx, targetUserID); email != "" {
			if action == "user_banned" {
				s.notifier.AccountBanned(email, name, notes)
			} else {
				s.notifier.AccountSuspended(email, name, notes)
			}
		}

	case "content_removed":
		if report.TargetType != "item" {
			return
		}
		_, err := db.Pool.Exec(ctx, `UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.ItemStatusRemoved, report.TargetID)
		if err != nil {
			log.Printf("Ошибка удаления вещи %s: %v", report.TargetID, err)
		}
	}
}

// resolveTargetUser определяет пользователя, к которому относится жалоба
func (s *ReportService) resolveTargetUser(ctx context.Context, report *models.Report) (uuid.UUID, bool) {
	switch report.TargetType {
	case "user":
		return report.TargetID, true
	case "item":
		var ownerID uuid.UUID
		err := db.Pool.QueryRow(ctx, `SELECT owner_id FROM items WHERE id = $1`, report.TargetID).Scan(&ownerID)
		if err != nil {
			log.Printf("Ошибка поиска владельца вещи %s: %v", report.TargetID, err)
			return uuid.Nil, false
		}
		return ownerID, true
	case "offer":
		var offeredBy uuid.UUID
		err := db.Pool.QueryRow(ctx, `SELECT offered_by FROM offers WHERE id = $1`, report.TargetID).Scan(&offeredBy)
		if err != nil {
			log.Printf("Ошибка поиска отправителя предложения %s: %v", report.TargetID, err)
			return uuid.Nil, false
		}
		return offeredBy, true
	}
	return uuid.Nil, false
}

// notifyAdmins отправляет уведомление о новой жалобе всем администраторам
func (s *ReportService) notifyAdmins(ctx context.Context, reportType, targetType string) {
	rows, err := db.Pool.Query(ctx, `
        SELECT COALESCE(email, ''), name FROM users WHERE role = $1 AND email IS NOT NULL
    `, models.RoleAdmin)
	if err != nil {
		log.Printf("Ошибка запроса администраторов: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var email, name string
		if err := rows.Scan(&email, &name); err != nil {
			continue
		}
		if email != "" {
			s.notifier.ReportReceived(email, name, reportType, targetType)
		}
	}
}

// userContact возвращает email и имя пользователя для уведомлений
func userContact(ctx context.Context, id uuid.UUID) (string, string) {
	var email, name string
	err := db.Pool.QueryRow(ctx, `SELECT COALESCE(email, ''), name FROM users WHERE id = $1`, id).Scan(&email, &name)
	if err != nil {
		log.Printf("Ошибка запроса контактов пользователя %s: %v", id, err)
		return "", ""
	}
	return email, name
}
