package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/ddanilkin/swapy-api/internal/cache"
	"github.com/ddanilkin/swapy-api/internal/config"
	"github.com/ddanilkin/swapy-api/internal/db"
	"github.com/ddanilkin/swapy-api/internal/middleware"
	"github.com/ddanilkin/swapy-api/internal/notify"
	"github.com/ddanilkin/swapy-api/internal/services/admin"
	"github.com/ddanilkin/swapy-api/internal/services/auth"
	"github.com/ddanilkin/swapy-api/internal/services/chat"
	"github.com/ddanilkin/swapy-api/internal/services/cloudinary"
	"github.com/ddanilkin/swapy-api/internal/services/item"
	"github.com/ddanilkin/swapy-api/internal/services/offer"
	"github.com/ddanilkin/swapy-api/internal/services/report"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Redis не критичен для запуска: без него не работают только
	// счетчики просмотров и отзыв токенов
	if err := cache.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis недоступен: %v", err)
	}
	defer cache.CloseRedis()

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Swapy API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	notifier := notify.NewNotifier(cfg)
	authService := auth.NewAuthService(cfg)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)
	itemService := item.NewItemService(cfg, cloudinaryService)
	offerService := offer.NewOfferService(cfg, notifier)
	chatService := chat.NewChatService(cfg, notifier)
	reportService := report.NewReportService(cfg, notifier)
	adminService := admin.NewAdminService(cfg, notifier)

	// Настраиваем middleware для аутентификации
	authMiddleware := middleware.AuthMiddleware(authService.GetJWTService())

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app, authMiddleware)
	itemService.SetupRoutes(app)
	offerService.SetupRoutes(app)
	chatService.SetupRoutes(app)
	reportService.SetupRoutes(app)
	adminService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ Swapy API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
