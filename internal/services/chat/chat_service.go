package chat

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ddanilkin/swapy-api/internal/config"
	"github.com/ddanilkin/swapy-api/internal/db"
	"github.com/ddanilkin/swapy-api/internal/middleware"
	"github.com/ddanilkin/swapy-api/internal/models"
	"github.com/ddanilkin/swapy-api/internal/notify"
	"github.com/ddanilkin/swapy-api/internal/services/offer"
	"github.com/ddanilkin/swapy-api/internal/utils"
)

// ChatService представляет сервис для работы с чатами обменов
type ChatService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	notifier   *notify.Notifier
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(cfg *config.Config, notifier *notify.Notifier) *ChatService {
	return &ChatService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		notifier:   notifier,
	}
}

// chatForOffer возвращает чат предложения, проверяя права доступа.
// Чат доступен только участникам принятого или завершенного предложения.
// Если чат не был создан при принятии, он создается здесь.
func (s *ChatService) chatForOffer(ctx context.Context, offerID, userID uuid.UUID) (*models.Chat, int, string) {
	var offeredBy, offeredTo uuid.UUID
	var status string
	err := db.Pool.QueryRow(ctx, `
        SELECT offered_by, offered_to, status FROM offers WHERE id = $1
    `, offerID).Scan(&offeredBy, &offeredTo, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fiber.StatusNotFound, "Предложение не найдено"
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return nil, fiber.StatusInternalServerError, "Ошибка получения предложения"
	}

	if offeredBy != userID && offeredTo != userID {
		return nil, fiber.StatusForbidden, "Доступ к чужому чату запрещен"
	}
	if status != offer.StatusAccepted && status != offer.StatusCompleted {
		return nil, fiber.StatusForbidden, "Чат доступен только после принятия предложения"
	}

	var chat models.Chat
	err = db.Pool.QueryRow(ctx, `
        SELECT id, offer_id, offered_by, offered_to, created_at, updated_at
        FROM chats WHERE offer_id = $1
    `, offerID).Scan(&chat.ID, &chat.OfferID, &chat.OfferedBy, &chat.OfferedTo, &chat.CreatedAt, &chat.UpdatedAt)

	if err == pgx.ErrNoRows {
		// Чат мог не создаться для старых принятых предложений
		chat = models.Chat{ID: uuid.New(), OfferID: offerID, OfferedBy: offeredBy, OfferedTo: offeredTo}
		err = db.Pool.QueryRow(ctx, `
            INSERT INTO chats (id, offer_id, offered_by, offered_to) VALUES ($1, $2, $3, $4)
            ON CONFLICT (offer_id) DO UPDATE SET updated_at = chats.updated_at
            RETURNING id, created_at, updated_at
        `, chat.ID, offerID, offeredBy, offeredTo).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)
	}
	if err != nil {
		log.Printf("Ошибка запроса чата: %v", err)
		return nil, fiber.StatusInternalServerError, "Ошибка получения чата"
	}

	return &chat, 0, ""
}

// GetChatMessages возвращает сообщения чата по предложению и помечает
// входящие сообщения прочитанными
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	chat, code, msg := s.chatForOffer(ctx, offerID, userID)
	if chat == nil {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}

	rows, err := db.Pool.Query(ctx, `
        SELECT m.id, m.chat_id, m.sender_id, m.content, m.is_read, m.created_at,
               u.id, u.name, u.avatar_url, u.city, u.district, u.rating, u.total_trades
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id = $1
        ORDER BY m.created_at ASC
    `, chat.ID)
	if err != nil {
		log.Printf("Ошибка запроса сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщений"})
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		var m models.Message
		var sender models.User
		err := rows.Scan(
			&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt,
			&sender.ID, &sender.Name, &sender.AvatarURL, &sender.City, &sender.District, &sender.Rating, &sender.TotalTrades,
		)
		if err != nil {
			log.Printf("Ошибка чтения сообщения: %v", err)
			continue
		}
		m.Sender = &sender
		messages = append(messages, &m)
	}

	// Просмотр чата помечает входящие сообщения прочитанными
	_, err = db.Pool.Exec(ctx, `
        UPDATE messages SET is_read = TRUE WHERE chat_id = $1 AND sender_id != $2 AND is_read = FALSE
    `, chat.ID, userID)
	if err != nil {
		log.Printf("Ошибка отметки сообщений прочитанными: %v", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"chat":     chat,
		"messages": messages,
	})
}

// SendMessage отправляет сообщение в чат предложения
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	var requestData struct {
		Content string `json:"content"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	requestData.Content = strings.TrimSpace(requestData.Content)
	if requestData.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Сообщение не может быть пустым"})
	}
	if len(requestData.Content) > 2000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Сообщение слишком длинное"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	chat, code, msg := s.chatForOffer(ctx, offerID, userID)
	if chat == nil {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}

	message := models.Message{
		ID:       uuid.New(),
		ChatID:   chat.ID,
		SenderID: userID,
		Content:  requestData.Content,
	}

	err = db.Pool.QueryRow(ctx, `
        INSERT INTO messages (id, chat_id, sender_id, content) VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, message.ID, message.ChatID, message.SenderID, message.Content).Scan(&message.CreatedAt)
	if err != nil {
		log.Printf("Ошибка создания сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка отправки сообщения"})
	}

	_, err = db.Pool.Exec(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, chat.ID)
	if err != nil {
		log.Printf("Ошибка обновления чата: %v", err)
	}

	// Уведомляем собеседника
	recipientID := chat.OfferedBy
	if recipientID == userID {
		recipientID = chat.OfferedTo
	}
	var email, name string
	err = db.Pool.QueryRow(ctx, `SELECT COALESCE(email, ''), name FROM users WHERE id = $1`, recipientID).Scan(&email, &name)
	if err != nil {
		log.Printf("Ошибка запроса получателя сообщения: %v", err)
	} else if email != "" {
		s.notifier.NewChatMessage(email, name, message.Content)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// GetUnreadCount возвращает число непрочитанных сообщений пользователя по всем чатам
func (s *ChatService) GetUnreadCount(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var count int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM messages m
        JOIN chats c ON c.id = m.chat_id
        WHERE (c.offered_by = $1 OR c.offered_to = $1)
          AND m.sender_id != $1 AND m.is_read = FALSE
    `, userID).Scan(&count)
	if err != nil {
		log.Printf("Ошибка подсчета непрочитанных сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка подсчета сообщений"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"unread_count": count,
	})
}

// MarkRead помечает все входящие сообщения чата прочитанными
func (s *ChatService) MarkRead(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	offerID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	chat, code, msg := s.chatForOffer(ctx, offerID, userID)
	if chat == nil {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}

	tag, err := db.Pool.Exec(ctx, `
        UPDATE messages SET is_read = TRUE WHERE chat_id = $1 AND sender_id != $2 AND is_read = FALSE
    `, chat.ID, userID)
	if err != nil {
		log.Printf("Ошибка отметки сообщений прочитанными: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления сообщений"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"marked_read": tag.RowsAffected(),
	})
}
