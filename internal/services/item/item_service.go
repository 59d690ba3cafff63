package item

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ddanilkin/swapy-api/internal/cache"
	"github.com/ddanilkin/swapy-api/internal/config"
	"github.com/ddanilkin/swapy-api/internal/db"
	"github.com/ddanilkin/swapy-api/internal/middleware"
	"github.com/ddanilkin/swapy-api/internal/models"
	"github.com/ddanilkin/swapy-api/internal/services/cloudinary"
	"github.com/ddanilkin/swapy-api/internal/utils"
)

// ItemService представляет сервис для работы с вещами
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	cloudinary *cloudinary.CloudinaryService
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(cfg *config.Config, cloudinaryService *cloudinary.CloudinaryService) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		cloudinary: cloudinaryService,
	}
}

const itemColumns = `i.id, i.owner_id, i.title, i.description, i.category, i.condition, i.city, i.district,
	i.wanted_description, i.wanted_categories, i.images, i.status, i.views, i.expires_at, i.created_at, i.updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var i models.Item
	err := row.Scan(
		&i.ID, &i.OwnerID, &i.Title, &i.Description, &i.Category, &i.Condition, &i.City, &i.District,
		&i.WantedDescription, &i.WantedCategories, &i.Images, &i.Status, &i.Views,
		&i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// validateItemPayload проверяет общие поля создания и редактирования вещи
func validateItemPayload(title, description, category, condition string, wantedCategories []string, images []models.ItemImage) string {
	if strings.TrimSpace(title) == "" {
		return "Название обязательно"
	}
	if len(title) > 200 {
		return "Название слишком длинное"
	}
	if strings.TrimSpace(description) == "" {
		return "Описание обязательно"
	}
	if !models.ValidCategories[category] {
		return "Недопустимая категория: " + category
	}
	if !models.ValidConditions[condition] {
		return "Недопустимое состояние: " + condition
	}
	for _, wc := range wantedCategories {
		if !models.ValidCategories[wc] {
			return "Недопустимая желаемая категория: " + wc
		}
	}
	if len(images) > models.MaxItemImages {
		return "Можно загрузить не более " + strconv.Itoa(models.MaxItemImages) + " изображений"
	}
	return ""
}

// GetItems возвращает публичный список активных вещей с фильтрами
func (s *ItemService) GetItems(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
        SELECT ` + itemColumns + `,
            u.id, u.name, u.avatar_url, u.city, u.district, u.rating, u.total_trades
        FROM items i
        JOIN users u ON u.id = i.owner_id
        WHERE i.status = $1 AND i.expires_at > NOW()`
	args := []any{models.ItemStatusActive}

	addFilter := func(clause, value string) {
		args = append(args, value)
		query += ` AND ` + clause + ` = $` + strconv.Itoa(len(args))
	}

	if category := c.Query("category"); category != "" {
		if !models.ValidCategories[category] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимая категория: " + category})
		}
		addFilter("i.category", category)
	}
	if condition := c.Query("condition"); condition != "" {
		if !models.ValidConditions[condition] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое состояние: " + condition})
		}
		addFilter("i.condition", condition)
	}
	if city := c.Query("city"); city != "" {
		addFilter("i.city", city)
	}
	if district := c.Query("district"); district != "" {
		addFilter("i.district", district)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (i.title ILIKE $` + n + ` OR i.description ILIKE $` + n + `)`
	}

	switch c.Query("sort") {
	case "oldest":
		query += ` ORDER BY i.created_at ASC`
	case "views":
		query += ` ORDER BY i.views DESC, i.created_at DESC`
	default:
		query += ` ORDER BY i.created_at DESC`
	}

	limit, offset := utils.Pagination(c.Query("limit"), c.Query("offset"))
	query += ` LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		var i models.Item
		var owner models.User
		err := rows.Scan(
			&i.ID, &i.OwnerID, &i.Title, &i.Description, &i.Category, &i.Condition, &i.City, &i.District,
			&i.WantedDescription, &i.WantedCategories, &i.Images, &i.Status, &i.Views,
			&i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt,
			&owner.ID, &owner.Name, &owner.AvatarURL, &owner.City, &owner.District, &owner.Rating, &owner.TotalTrades,
		)
		if err != nil {
			log.Printf("Ошибка чтения строки вещи: %v", err)
			continue
		}
		i.Owner = &owner
		i.Views += cache.GetItemViews(ctx, i.ID)
		items = append(items, &i)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// GetItem возвращает вещь по ID. Просмотр чужой вещи увеличивает счетчик просмотров.
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := scanItem(db.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1`, itemID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещи"})
	}

	item.Owner = s.publicUser(ctx, item.OwnerID)

	// Счетчик просмотров живет в Redis, в ответе суммируется с базой.
	// Маршрут публичный, поэтому userID может отсутствовать.
	rawUserID, _ := c.Locals("userID").(string)
	viewerID, _ := uuid.Parse(rawUserID)
	if viewerID != item.OwnerID {
		item.Views += cache.IncrementItemViews(ctx, item.ID)
	} else {
		item.Views += cache.GetItemViews(ctx, item.ID)
		item.IsOwnerView = true

		var offerCount int
		err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE item_id = $1 AND status = 'pending'`, item.ID).Scan(&offerCount)
		if err != nil {
			log.Printf("Ошибка подсчета предложений: %v", err)
		}
		item.OfferCount = offerCount
	}

	if viewerID != uuid.Nil {
		var favorite bool
		err = db.Pool.QueryRow(ctx, `
            SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND item_id = $2)
        `, viewerID, item.ID).Scan(&favorite)
		if err != nil {
			log.Printf("Ошибка проверки избранного: %v", err)
		}
		item.IsFavorite = favorite
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// CreateItem создает новую вещь для обмена
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		Title             string             `json:"title"`
		Description       string             `json:"description"`
		Category          string             `json:"category"`
		Condition         string             `json:"condition"`
		City              string             `json:"city"`
		District          string             `json:"district"`
		WantedDescription string             `json:"wanted_description"`
		WantedCategories  []string           `json:"wanted_categories"`
		Images            []models.ItemImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if msg := validateItemPayload(requestData.Title, requestData.Description, requestData.Category,
		requestData.Condition, requestData.WantedCategories, requestData.Images); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if requestData.WantedCategories == nil {
		requestData.WantedCategories = []string{}
	}
	if requestData.Images == nil {
		requestData.Images = []models.ItemImage{}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	now := time.Now()
	itemID := uuid.New()

	_, err = db.Pool.Exec(ctx, `
        INSERT INTO items (id, owner_id, title, description, category, condition, city, district,
            wanted_description, wanted_categories, images, status, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
    `, itemID, ownerID, strings.TrimSpace(requestData.Title), requestData.Description,
		requestData.Category, requestData.Condition, requestData.City, requestData.District,
		requestData.WantedDescription, requestData.WantedCategories, requestData.Images,
		models.ItemStatusActive, models.DefaultItemExpiry(now), now)
	if err != nil {
		log.Printf("Ошибка создания вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания вещи"})
	}

	item, err := scanItem(db.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1`, itemID))
	if err != nil {
		log.Printf("Ошибка чтения созданной вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка чтения вещи"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// UpdateItem редактирует вещь. Новые изображения добавляются к существующим,
// при превышении лимита самые старые отбрасываются и удаляются из Cloudinary.
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	var requestData struct {
		Title             *string            `json:"title"`
		Description       *string            `json:"description"`
		Category          *string            `json:"category"`
		Condition         *string            `json:"condition"`
		City              *string            `json:"city"`
		District          *string            `json:"district"`
		WantedDescription *string            `json:"wanted_description"`
		WantedCategories  []string           `json:"wanted_categories"`
		NewImages         []models.ItemImage `json:"new_images"`
		Status            *string            `json:"status"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := scanItem(db.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1`, itemID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещи"})
	}

	if item.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Редактировать вещь может только владелец"})
	}
	if item.Status == models.ItemStatusRemoved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь удалена модератором и недоступна для редактирования"})
	}

	if requestData.Title != nil {
		item.Title = strings.TrimSpace(*requestData.Title)
	}
	if requestData.Description != nil {
		item.Description = *requestData.Description
	}
	if requestData.Category != nil {
		item.Category = *requestData.Category
	}
	if requestData.Condition != nil {
		item.Condition = *requestData.Condition
	}
	if requestData.City != nil {
		item.City = *requestData.City
	}
	if requestData.District != nil {
		item.District = *requestData.District
	}
	if requestData.WantedDescription != nil {
		item.WantedDescription = *requestData.WantedDescription
	}
	if requestData.WantedCategories != nil {
		item.WantedCategories = requestData.WantedCategories
	}
	if requestData.Status != nil {
		// Владелец может только включать и выключать объявление
		if *requestData.Status != models.ItemStatusActive && *requestData.Status != models.ItemStatusInactive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус: " + *requestData.Status})
		}
		item.Status = *requestData.Status
	}

	if msg := validateItemPayload(item.Title, item.Description, item.Category,
		item.Condition, item.WantedCategories, nil); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	kept, dropped := models.CapImages(item.Images, requestData.NewImages)
	item.Images = kept

	_, err = db.Pool.Exec(ctx, `
        UPDATE items SET title = $1, description = $2, category = $3, condition = $4, city = $5, district = $6,
            wanted_description = $7, wanted_categories = $8, images = $9, status = $10, updated_at = NOW()
        WHERE id = $11
    `, item.Title, item.Description, item.Category, item.Condition, item.City, item.District,
		item.WantedDescription, item.WantedCategories, item.Images, item.Status, item.ID)
	if err != nil {
		log.Printf("Ошибка обновления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления вещи"})
	}

	// Отброшенные изображения чистим в Cloudinary
	for _, img := range dropped {
		if img.PublicID != "" {
			s.cloudinary.DestroyAsset(ctx, img.PublicID)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// DeleteItem удаляет вещь владельца вместе с изображениями в Cloudinary
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var itemOwnerID uuid.UUID
	var images []models.ItemImage
	err = db.Pool.QueryRow(ctx, `SELECT owner_id, images FROM items WHERE id = $1`, itemID).Scan(&itemOwnerID, &images)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещи"})
	}
	if itemOwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Удалить вещь может только владелец"})
	}

	_, err = db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	if err != nil {
		log.Printf("Ошибка удаления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления вещи"})
	}

	for _, img := range images {
		if img.PublicID != "" {
			s.cloudinary.DestroyAsset(ctx, img.PublicID)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetMyItems возвращает все вещи пользователя независимо от статуса
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT `+itemColumns+`,
            (SELECT COUNT(*) FROM offers o WHERE o.item_id = i.id AND o.status = 'pending') AS offer_count
        FROM items i
        WHERE i.owner_id = $1
        ORDER BY i.created_at DESC
    `, ownerID)
	if err != nil {
		log.Printf("Ошибка запроса своих вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		var i models.Item
		err := rows.Scan(
			&i.ID, &i.OwnerID, &i.Title, &i.Description, &i.Category, &i.Condition, &i.City, &i.District,
			&i.WantedDescription, &i.WantedCategories, &i.Images, &i.Status, &i.Views,
			&i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt, &i.OfferCount,
		)
		if err != nil {
			log.Printf("Ошибка чтения строки вещи: %v", err)
			continue
		}
		i.Views += cache.GetItemViews(ctx, i.ID)
		i.IsOwnerView = true
		items = append(items, &i)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// ToggleFavorite добавляет вещь в избранное или убирает из него
func (s *ItemService) ToggleFavorite(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var exists bool
	err = db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		log.Printf("Ошибка проверки вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки вещи"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
	}

	tag, err := db.Pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	if err != nil {
		log.Printf("Ошибка удаления из избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления избранного"})
	}

	favorited := false
	if tag.RowsAffected() == 0 {
		_, err = db.Pool.Exec(ctx, `
            INSERT INTO favorites (id, user_id, item_id) VALUES ($1, $2, $3)
            ON CONFLICT (user_id, item_id) DO NOTHING
        `, uuid.New(), userID, itemID)
		if err != nil {
			log.Printf("Ошибка добавления в избранное: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления избранного"})
		}
		favorited = true
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"favorited": favorited,
	})
}

// GetFavorites возвращает избранные вещи пользователя
func (s *ItemService) GetFavorites(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT `+itemColumns+`
        FROM favorites f
        JOIN items i ON i.id = f.item_id
        WHERE f.user_id = $1
        ORDER BY f.created_at DESC
    `, userID)
	if err != nil {
		log.Printf("Ошибка запроса избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения избранного"})
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Printf("Ошибка чтения строки избранного: %v", err)
			continue
		}
		item.IsFavorite = true
		items = append(items, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// GetCategories возвращает справочники категорий и состояний для клиента
func (s *ItemService) GetCategories(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"categories": models.Categories(),
		"conditions": []string{"new", "like_new", "good", "fair", "poor"},
	})
}

// publicUser возвращает публичный профиль пользователя или nil
func (s *ItemService) publicUser(ctx context.Context, id uuid.UUID) *models.User {
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
