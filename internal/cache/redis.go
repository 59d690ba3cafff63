package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ddanilkin/swapy-api/internal/config"
)

// Client глобальный клиент Redis. Может быть nil, если Redis не настроен —
// тогда счетчики просмотров и блэклист токенов отключены.
var Client *redis.Client

// InitRedis подключается к Redis
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	Client = client
	log.Println("✅ Успешное подключение к Redis")
	return nil
}

// CloseRedis закрывает соединение с Redis
func CloseRedis() {
	if Client != nil {
		Client.Close()
	}
}

// IncrementItemViews увеличивает счетчик просмотров вещи и возвращает новое значение.
// При недоступном Redis возвращает 0 без ошибки — просмотры не критичны.
func IncrementItemViews(ctx context.Context, itemID uuid.UUID) int64 {
	if Client == nil {
		return 0
	}

	key := fmt.Sprintf("item_views:%s", itemID)
	views, err := Client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("Ошибка увеличения счетчика просмотров: %v", err)
		return 0
	}
	return views
}

// GetItemViews возвращает накопленный счетчик просмотров вещи
func GetItemViews(ctx context.Context, itemID uuid.UUID) int64 {
	if Client == nil {
		return 0
	}

	key := fmt.Sprintf("item_views:%s", itemID)
	views, err := Client.Get(ctx, key).Int64()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Ошибка чтения счетчика просмотров: %v", err)
		}
		return 0
	}
	return views
}

// BlacklistToken помещает jti токена в блэклист до истечения его срока действия
func BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if Client == nil {
		return nil
	}
	if ttl <= 0 {
		return nil
	}

	key := fmt.Sprintf("token_blacklist:%s", jti)
	return Client.Set(ctx, key, 1, ttl).Err()
}

// IsTokenBlacklisted проверяет, отозван ли токен
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if Client == nil || jti == "" {
		return false
	}

	key := fmt.Sprintf("token_blacklist:%s", jti)
	n, err := Client.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("Ошибка проверки блэклиста токенов: %v", err)
		return false
	}
	return n > 0
}
