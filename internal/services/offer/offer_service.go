package offer

import (
	"context"
	"errors"
	"log"
	"strconv"
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

// OfferService представляет сервис для работы с предложениями об обмене
type OfferService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	notifier   *notify.Notifier
}

// NewOfferService создает новый экземпляр OfferService
func NewOfferService(cfg *config.Config, notifier *notify.Notifier) *OfferService {
	return &OfferService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		notifier:   notifier,
	}
}

const offerColumns = `o.id, o.item_id, o.offered_by, o.offered_to, o.offered_items, o.message, o.status,
	o.response_message, o.meeting_location, o.meeting_date, o.meeting_notes, o.expires_at, o.created_at, o.updated_at`

// scanOffer читает предложение из строки запроса с колонками offerColumns
func scanOffer(row pgx.Row) (*models.Offer, error) {
	var o models.Offer
	var meetingLocation, meetingNotes string
	var meetingDate *time.Time

	err := row.Scan(
		&o.ID, &o.ItemID, &o.OfferedBy, &o.OfferedTo, &o.OfferedItems, &o.Message, &o.Status,
		&o.ResponseMessage, &meetingLocation, &meetingDate, &meetingNotes,
		&o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if meetingLocation != "" || meetingNotes != "" || meetingDate != nil {
		o.MeetingDetails = &models.MeetingDetail{
			Location: meetingLocation,
			Date:     meetingDate,
			Notes:    meetingNotes,
		}
	}
	return &o, nil
}

// createOfferGuard проверяет, что на вещь можно сделать предложение.
// Неактивная вещь неотличима для клиента от несуществующей.
func createOfferGuard(itemStatus string, ownerID, senderID uuid.UUID) (int, string) {
	if itemStatus != models.ItemStatusActive {
		return fiber.StatusNotFound, "Вещь не найдена или недоступна для обмена"
	}
	if ownerID == senderID {
		return fiber.StatusBadRequest, "Нельзя предложить обмен на собственную вещь"
	}
	return 0, ""
}

// CreateOffer создает новое предложение об обмене на вещь
func (s *OfferService) CreateOffer(c fiber.Ctx) error {
	senderID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		ItemID       string               `json:"item_id"`
		OfferedItems []models.OfferedItem `json:"offered_items"`
		Message      string               `json:"message"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	itemID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	if len(requestData.OfferedItems) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Необходимо указать хотя бы одну вещь для обмена"})
	}
	for _, oi := range requestData.OfferedItems {
		if oi.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "У предлагаемой вещи должно быть название"})
		}
		if oi.Condition != "" && !models.ValidConditions[oi.Condition] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое состояние вещи: " + oi.Condition})
		}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем вещь: существует, активна и не принадлежит отправителю
	var ownerID uuid.UUID
	var itemTitle, itemStatus string
	err = db.Pool.QueryRow(ctx, `
        SELECT owner_id, title, status FROM items WHERE id = $1
    `, itemID).Scan(&ownerID, &itemTitle, &itemStatus)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки вещи"})
	}

	if code, msg := createOfferGuard(itemStatus, ownerID, senderID); code != 0 {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}

	now := time.Now()
	offerID := uuid.New()

	_, err = db.Pool.Exec(ctx, `
        INSERT INTO offers (id, item_id, offered_by, offered_to, offered_items, message, status, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
    `, offerID, itemID, senderID, ownerID, requestData.OfferedItems, requestData.Message, StatusPending, models.DefaultOfferExpiry(now), now)

	if err != nil {
		// Частичный уникальный индекс не допускает второе активное предложение на ту же вещь
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "У вас уже есть активное предложение на эту вещь"})
		}
		log.Printf("Ошибка создания предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания предложения"})
	}

	// Уведомляем владельца вещи
	if email, name := s.userContact(ctx, ownerID); email != "" {
		s.notifier.OfferCreated(email, name, itemTitle, requestData.Message)
	}

	offer, err := scanOffer(db.Pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers o WHERE o.id = $1`, offerID))
	if err != nil {
		log.Printf("Ошибка чтения созданного предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка чтения предложения"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"offer":   offer,
	})
}

// listOffers выполняет выборку предложений по указанной стороне сделки
func (s *OfferService) listOffers(c fiber.Ctx, partyColumn, counterpartColumn string) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
        SELECT ` + offerColumns + `,
            i.id, i.title, i.images, i.status,
            u.id, u.name, u.avatar_url, u.city, u.district, u.rating, u.total_trades
        FROM offers o
        JOIN items i ON i.id = o.item_id
        JOIN users u ON u.id = o.` + counterpartColumn + `
        WHERE o.` + partyColumn + ` = $1`
	args := []any{userID}

	if status := c.Query("status"); status != "" {
		if !ValidStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус: " + status})
		}
		query += ` AND o.status = $2`
		args = append(args, status)
	}

	limit, offset := utils.Pagination(c.Query("limit"), c.Query("offset"))
	query += ` ORDER BY o.created_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса предложений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложений"})
	}
	defer rows.Close()

	offers := []*models.Offer{}
	for rows.Next() {
		var o models.Offer
		var item models.Item
		var user models.User
		var meetingLocation, meetingNotes string
		var meetingDate *time.Time

		err := rows.Scan(
			&o.ID, &o.ItemID, &o.OfferedBy, &o.OfferedTo, &o.OfferedItems, &o.Message, &o.Status,
			&o.ResponseMessage, &meetingLocation, &meetingDate, &meetingNotes,
			&o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt,
			&item.ID, &item.Title, &item.Images, &item.Status,
			&user.ID, &user.Name, &user.AvatarURL, &user.City, &user.District, &user.Rating, &user.TotalTrades,
		)
		if err != nil {
			log.Printf("Ошибка чтения строки предложения: %v", err)
			continue
		}

		if meetingLocation != "" || meetingNotes != "" || meetingDate != nil {
			o.MeetingDetails = &models.MeetingDetail{Location: meetingLocation, Date: meetingDate, Notes: meetingNotes}
		}
		o.Item = &item
		if partyColumn == "offered_by" {
			o.Receiver = &user
		} else {
			o.Sender = &user
		}
		offers = append(offers, &o)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"offers":  offers,
		"count":   len(offers),
	})
}

// GetSentOffers возвращает предложения, отправленные пользователем
func (s *OfferService) GetSentOffers(c fiber.Ctx) error {
	return s.listOffers(c, "offered_by", "offered_to")
}

// GetReceivedOffers возвращает предложения, полученные пользователем
func (s *OfferService) GetReceivedOffers(c fiber.Ctx) error {
	return s.listOffers(c, "offered_to", "offered_by")
}

// GetItemOffers возвращает предложения на конкретную вещь. Доступно только владельцу.
func (s *OfferService) GetItemOffers(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, `SELECT owner_id FROM items WHERE id = $1`, itemID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки вещи"})
	}
	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Просматривать предложения может только владелец вещи"})
	}

	rows, err := db.Pool.Query(ctx, `
        SELECT `+offerColumns+`,
            u.id, u.name, u.avatar_url, u.city, u.district, u.rating, u.total_trades
        FROM offers o
        JOIN users u ON u.id = o.offered_by
        WHERE o.item_id = $1
        ORDER BY o.created_at DESC
    `, itemID)
	if err != nil {
		log.Printf("Ошибка запроса предложений на вещь: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложений"})
	}
	defer rows.Close()

	offers := []*models.Offer{}
	for rows.Next() {
		var o models.Offer
		var sender models.User
		var meetingLocation, meetingNotes string
		var meetingDate *time.Time

		err := rows.Scan(
			&o.ID, &o.ItemID, &o.OfferedBy, &o.OfferedTo, &o.OfferedItems, &o.Message, &o.Status,
			&o.ResponseMessage, &meetingLocation, &meetingDate, &meetingNotes,
			&o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt,
			&sender.ID, &sender.Name, &sender.AvatarURL, &sender.City, &sender.District, &sender.Rating, &sender.TotalTrades,
		)
		if err != nil {
			log.Printf("Ошибка чтения строки предложения: %v", err)
			continue
		}

		if meetingLocation != "" || meetingNotes != "" || meetingDate != nil {
			o.MeetingDetails = &models.MeetingDetail{Location: meetingLocation, Date: meetingDate, Notes: meetingNotes}
		}
		o.Sender = &sender
		offers = append(offers, &o)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"offers":  offers,
		"count":   len(offers),
	})
}

// GetOffer возвращает одно предложение. Доступно только участникам сделки.
func (s *OfferService) GetOffer(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	offer, err := scanOffer(db.Pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers o WHERE o.id = $1`, offerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	if offer.OfferedBy != userID && offer.OfferedTo != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Доступ к чужому предложению запрещен"})
	}

	// Подтягиваем вещь и участников
	var item models.Item
	err = db.Pool.QueryRow(ctx, `
        SELECT id, owner_id, title, description, category, condition, images, status
        FROM items WHERE id = $1
    `, offer.ItemID).Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Category, &item.Condition, &item.Images, &item.Status)
	if err == nil {
		offer.Item = &item
	} else if err != pgx.ErrNoRows {
		log.Printf("Ошибка запроса вещи предложения: %v", err)
	}

	offer.Sender = s.publicUser(ctx, offer.OfferedBy)
	offer.Receiver = s.publicUser(ctx, offer.OfferedTo)

	// Если предложение принято, у него есть чат
	var chatID uuid.UUID
	err = db.Pool.QueryRow(ctx, `SELECT id FROM chats WHERE offer_id = $1`, offerID).Scan(&chatID)
	if err == nil {
		offer.ChatID = &chatID
	} else if err != pgx.ErrNoRows {
		log.Printf("Ошибка запроса чата предложения: %v", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"offer":   offer,
	})
}

// AcceptOffer принимает предложение и создает чат для обсуждения обмена.
// Смена статуса выполняется условным UPDATE, поэтому два одновременных
// ответа на одно предложение не могут пройти оба.
func (s *OfferService) AcceptOffer(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	var requestData struct {
		ResponseMessage string `json:"response_message"`
	}
	_ = c.Bind().Body(&requestData)

	ctx, cancel := db.GetContext()
	defer cancel()

	var offeredBy, offeredTo uuid.UUID
	var status string
	var expiresAt time.Time
	err = db.Pool.QueryRow(ctx, `
        SELECT offered_by, offered_to, status, expires_at FROM offers WHERE id = $1
    `, offerID).Scan(&offeredBy, &offeredTo, &status, &expiresAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	if offeredTo != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Принять предложение может только владелец вещи"})
	}
	if !CanTransition(status, StatusAccepted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Предложение уже обработано"})
	}
	if time.Now().After(expiresAt) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Срок действия предложения истек"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE offers SET status = $1, response_message = $2, updated_at = NOW()
        WHERE id = $3 AND status = $4 AND expires_at > NOW()
    `, StatusAccepted, requestData.ResponseMessage, offerID, StatusPending)
	if err != nil {
		log.Printf("Ошибка принятия предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка принятия предложения"})
	}
	if tag.RowsAffected() == 0 {
		// Статус успел измениться между проверкой и обновлением
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Предложение уже обработано"})
	}

	chatID := uuid.New()
	_, err = tx.Exec(ctx, `
        INSERT INTO chats (id, offer_id, offered_by, offered_to) VALUES ($1, $2, $3, $4)
    `, chatID, offerID, offeredBy, offeredTo)
	if err != nil {
		log.Printf("Ошибка создания чата: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания чата"})
	}

	greeting := requestData.ResponseMessage
	if greeting == "" {
		greeting = "Предложение принято! Давайте договоримся об обмене."
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO messages (id, chat_id, sender_id, content) VALUES ($1, $2, $3, $4)
    `, uuid.New(), chatID, userID, greeting)
	if err != nil {
		log.Printf("Ошибка создания первого сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания чата"})
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	// Уведомляем отправителя предложения
	if email, name := s.userContact(ctx, offeredBy); email != "" {
		itemTitle := s.itemTitle(ctx, offerID)
		s.notifier.OfferAccepted(email, name, itemTitle, requestData.ResponseMessage)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  StatusAccepted,
		"chat_id": chatID,
	})
}

// RejectOffer отклоняет предложение
func (s *OfferService) RejectOffer(c fiber.Ctx) error {
	return s.respondToOffer(c, StatusRejected)
}

// WithdrawOffer отзывает предложение. Доступно только отправителю.
func (s *OfferService) WithdrawOffer(c fiber.Ctx) error {
	return s.respondToOffer(c, StatusWithdrawn)
}

// respondToOffer переводит предложение из pending в rejected или withdrawn
func (s *OfferService) respondToOffer(c fiber.Ctx, newStatus string) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	var requestData struct {
		ResponseMessage string `json:"response_message"`
	}
	_ = c.Bind().Body(&requestData)

	ctx, cancel := db.GetContext()
	defer cancel()

	var offeredBy, offeredTo uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, `
        SELECT offered_by, offered_to, status FROM offers WHERE id = $1
    `, offerID).Scan(&offeredBy, &offeredTo, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	// Отклонить может только получатель, отозвать только отправитель
	if newStatus == StatusRejected && offeredTo != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Отклонить предложение может только владелец вещи"})
	}
	if newStatus == StatusWithdrawn && offeredBy != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Отозвать предложение может только его отправитель"})
	}
	if !CanTransition(status, newStatus) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Предложение уже обработано"})
	}

	tag, err := db.Pool.Exec(ctx, `
        UPDATE offers SET status = $1, response_message = $2, updated_at = NOW()
        WHERE id = $3 AND status = $4
    `, newStatus, requestData.ResponseMessage, offerID, StatusPending)
	if err != nil {
		log.Printf("Ошибка обновления статуса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления предложения"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Предложение уже обработано"})
	}

	if newStatus == StatusRejected {
		if email, name := s.userContact(ctx, offeredBy); email != "" {
			itemTitle := s.itemTitle(ctx, offerID)
			s.notifier.OfferRejected(email, name, itemTitle, requestData.ResponseMessage)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  newStatus,
	})
}

// CompleteOffer завершает обмен: вещь снимается с площадки, обоим участникам
// засчитывается сделка. Доступно обоим участникам принятого предложения.
func (s *OfferService) CompleteOffer(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	var requestData struct {
		MeetingDetails *models.MeetingDetail `json:"meeting_details"`
	}
	_ = c.Bind().Body(&requestData)

	ctx, cancel := db.GetContext()
	defer cancel()

	var itemID, offeredBy, offeredTo uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, `
        SELECT item_id, offered_by, offered_to, status FROM offers WHERE id = $1
    `, offerID).Scan(&itemID, &offeredBy, &offeredTo, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	if offeredBy != userID && offeredTo != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Завершить обмен может только его участник"})
	}
	if !CanTransition(status, StatusCompleted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Завершить можно только принятое предложение"})
	}

	var meetingLocation, meetingNotes string
	var meetingDate *time.Time
	if requestData.MeetingDetails != nil {
		meetingLocation = requestData.MeetingDetails.Location
		meetingDate = requestData.MeetingDetails.Date
		meetingNotes = requestData.MeetingDetails.Notes
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE offers SET status = $1, meeting_location = $2, meeting_date = $3, meeting_notes = $4, updated_at = NOW()
        WHERE id = $5 AND status = $6
    `, StatusCompleted, meetingLocation, meetingDate, meetingNotes, offerID, StatusAccepted)
	if err != nil {
		log.Printf("Ошибка завершения предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка завершения обмена"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Завершить можно только принятое предложение"})
	}

	_, err = tx.Exec(ctx, `
        UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2
    `, models.ItemStatusCompleted, itemID)
	if err != nil {
		log.Printf("Ошибка обновления статуса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка завершения обмена"})
	}

	_, err = tx.Exec(ctx, `
        UPDATE users SET total_trades = total_trades + 1, updated_at = NOW() WHERE id = $1 OR id = $2
    `, offeredBy, offeredTo)
	if err != nil {
		log.Printf("Ошибка обновления счетчика обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка завершения обмена"})
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  StatusCompleted,
	})
}

// userContact возвращает email и имя пользователя для отправки уведомлений
func (s *OfferService) userContact(ctx context.Context, id uuid.UUID) (string, string) {
	var email, name string
	err := db.Pool.QueryRow(ctx, `SELECT COALESCE(email, ''), name FROM users WHERE id = $1`, id).Scan(&email, &name)
	if err != nil {
		log.Printf("Ошибка запроса контактов пользователя %s: %v", id, err)
		return "", ""
	}
	return email, name
}

// publicUser возвращает публичный профиль пользователя или nil
func (s *OfferService) publicUser(ctx context.Context, id uuid.UUID) *models.User {
	var u models.User
	err := db.Pool.QueryRow(ctx, `
        SELECT id, name, avatar_url, city, district, rating, total_trades FROM users WHERE id = $1
    `, id).Scan(&u.ID, &u.Name, &u.AvatarURL, &u.City, &u.District, &u.Rating, &u.TotalTrades)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("Ошибка запроса пользователя %s: %v", id, err)
		}
		return nil
	}
	return &u
}

// itemTitle возвращает название вещи по ID предложения
func (s *OfferService) itemTitle(ctx context.Context, offerID uuid.UUID) string {
	var title string
	err := db.Pool.QueryRow(ctx, `
        SELECT i.title FROM items i JOIN offers o ON o.item_id = i.id WHERE o.id = $1
    `, offerID).Scan(&title)
	if err != nil {
		log.Printf("Ошибка запроса названия вещи: %v", err)
		return ""
	}
	return title
}
