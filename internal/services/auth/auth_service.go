package auth

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"golang.org/x/crypto/bcrypt"

	"github.com/ddanilkin/swapy-api/internal/cache"
	"github.com/ddanilkin/swapy-api/internal/config"
	"github.com/ddanilkin/swapy-api/internal/db"
	"github.com/ddanilkin/swapy-api/internal/middleware"
	"github.com/ddanilkin/swapy-api/internal/models"
	"github.com/ddanilkin/swapy-api/internal/utils"
)

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT-сервис для middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Register регистрирует нового пользователя по email и паролю
func (s *AuthService) Register(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		City     string `json:"city"`
		District string `json:"district"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Name = strings.TrimSpace(payload.Name)

	if !utils.ValidateEmail(payload.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Некорректный email"})
	}
	if !utils.ValidatePassword(payload.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Пароль должен содержать не менее 8 символов"})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя обязательно"})
	}

	// Проверяем, не занят ли email
	existing, err := db.GetUserByEmail(payload.Email)
	if err != nil {
		log.Printf("Ошибка проверки email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Этот email уже зарегистрирован"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сервера"})
	}

	user, err := db.CreateUser(payload.Email, string(hash), payload.Name, payload.Phone, payload.City, payload.District)
	if err != nil {
		log.Printf("Ошибка создания пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка регистрации"})
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		log.Printf("Ошибка создания токена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания токена"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    profileResponse(user),
	})
}

// Login выполняет вход по email и паролю
func (s *AuthService) Login(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	user, err := db.GetUserByEmail(payload.Email)
	if err != nil {
		log.Printf("Ошибка поиска пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный email или пароль"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный email или пароль"})
	}

	// Заблокированные аккаунты не пускаем
	if user.Status != models.UserStatusActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Аккаунт заблокирован"})
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		log.Printf("Ошибка создания токена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания токена"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    profileResponse(user),
	})
}

// Logout отзывает текущий токен до истечения его срока действия
func (s *AuthService) Logout(c fiber.Ctx) error {
	jti, _ := c.Locals("tokenJTI").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)

	if jti != "" {
		if err := cache.BlacklistToken(c.Context(), jti, time.Until(exp)); err != nil {
			log.Printf("Ошибка отзыва токена: %v", err)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// Me возвращает профиль текущего пользователя
func (s *AuthService) Me(c fiber.Ctx) error {
	userUUID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	user, err := db.GetUserByID(userUUID)
	if err != nil {
		log.Printf("Ошибка получения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	return c.JSON(fiber.Map{"user": profileResponse(user)})
}

// ChangePassword меняет пароль текущего пользователя
func (s *AuthService) ChangePassword(c fiber.Ctx) error {
	userUUID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var payload struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if !utils.ValidatePassword(payload.NewPassword) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Новый пароль должен содержать не менее 8 символов"})
	}

	user, err := db.GetUserByID(userUUID)
	if err != nil || user == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения пользователя"})
	}

	if user.PasswordHash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Для этого аккаунта пароль не установлен"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.CurrentPassword)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Текущий пароль неверен"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сервера"})
	}

	if err := db.UpdatePassword(user.ID, string(hash)); err != nil {
		log.Printf("Ошибка обновления пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления пароля"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// TelegramAuthHandler проверяет initData, создает JWT и возвращает его
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	if s.cfg.TelegramBotToken == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вход через Telegram не настроен"})
	}

	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Проверяем initData
	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Недействительные данные Telegram"})
	}

	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ошибка разбора initData"})
	}

	user, err := db.CreateOrUpdateTelegramUser(
		data.User.ID, data.User.Username, data.User.FirstName, data.User.LastName, data.User.PhotoURL,
	)
	if err != nil {
		log.Printf("Ошибка создания Telegram пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка входа через Telegram"})
	}

	if user.Status != models.UserStatusActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Аккаунт заблокирован"})
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания токена"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    profileResponse(user),
	})
}

// profileResponse собирает полный профиль для ответа API
func profileResponse(user *db.User) models.Profile {
	return models.Profile{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Phone:       user.Phone,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		City:        user.City,
		District:    user.District,
		Role:        user.Role,
		Status:      user.Status,
		Rating:      user.Rating,
		TotalTrades: user.TotalTrades,
		CreatedAt:   user.CreatedAt,
	}
}
