package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User представляет пользователя в системе
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Bio          string
	AvatarURL    string
	City         string
	District     string
	Role         string
	Status       string
	Rating       float64
	TotalTrades  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser создает нового пользователя с email и паролем
func CreateUser(email, passwordHash, name, phone, city, district string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	user := &User{
		Email:    email,
		Name:     name,
		Phone:    phone,
		City:     city,
		District: district,
		Role:     "user",
		Status:   "active",
	}

	err := Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, phone, city, district, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at
	`, email, passwordHash, name, phone, city, district).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return user, nil
}

// GetUserByEmail возвращает пользователя по email, nil если не найден
func GetUserByEmail(email string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user User
	err := Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, phone, bio, avatar_url, city, district,
		       role, status, rating, total_trades, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Phone, &user.Bio,
		&user.AvatarURL, &user.City, &user.District, &user.Role, &user.Status,
		&user.Rating, &user.TotalTrades, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}

	return &user, nil
}

// GetUserByID возвращает пользователя по ID, nil если не найден
func GetUserByID(id uuid.UUID) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user User
	var email, passwordHash *string
	err := Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, phone, bio, avatar_url, city, district,
		       role, status, rating, total_trades, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &email, &passwordHash, &user.Name, &user.Phone, &user.Bio,
		&user.AvatarURL, &user.City, &user.District, &user.Role, &user.Status,
		&user.Rating, &user.TotalTrades, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}

	// email и password_hash допускают NULL для Telegram-пользователей
	if email != nil {
		user.Email = *email
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}

	return &user, nil
}

// UpdatePassword обновляет хеш пароля пользователя
func UpdatePassword(userID uuid.UUID, passwordHash string) error {
	ctx, cancel := GetContext()
	defer cancel()

	_, err := Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, userID)

	if err != nil {
		return fmt.Errorf("ошибка при обновлении пароля: %w", err)
	}
	return nil
}

// CreateOrUpdateTelegramUser создает нового пользователя через Telegram или обновляет существующего
func CreateOrUpdateTelegramUser(telegramID int64, username, firstName, lastName, photoURL string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	// Начинаем транзакцию
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM telegram_users WHERE telegram_id = $1
	`, telegramID).Scan(&userID)

	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("ошибка при проверке существования пользователя Telegram: %w", err)
	}

	name := firstName
	if lastName != "" {
		name = firstName + " " + lastName
	}

	if err == pgx.ErrNoRows {
		// Создаем запись в users
		err = tx.QueryRow(ctx, `
			INSERT INTO users (name, avatar_url, last_login_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			RETURNING id
		`, name, photoURL).Scan(&userID)

		if err != nil {
			return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
		}

		// Создаем запись в telegram_users
		_, err = tx.Exec(ctx, `
			INSERT INTO telegram_users (user_id, telegram_id, username, first_name, last_name, photo_url)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, userID, telegramID, username, firstName, lastName, photoURL)

		if err != nil {
			return nil, fmt.Errorf("ошибка при создании Telegram пользователя: %w", err)
		}
	} else {
		// Обновляем данные Telegram и время входа
		_, err = tx.Exec(ctx, `
			UPDATE users SET last_login_at = CURRENT_TIMESTAMP WHERE id = $1
		`, userID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при обновлении времени входа пользователя: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE telegram_users
			SET username = $1, first_name = $2, last_name = $3, photo_url = $4, updated_at = NOW()
			WHERE telegram_id = $5
		`, username, firstName, lastName, photoURL, telegramID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при обновлении Telegram пользователя: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return GetUserByID(userID)
}
