package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы учетной записи пользователя
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusBanned    = "banned"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет публичную информацию о пользователе для API
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	City        string    `json:"city,omitempty"`
	District    string    `json:"district,omitempty"`
	Rating      float64   `json:"rating"`
	TotalTrades int       `json:"total_trades"`
}

// Profile представляет полный профиль текущего пользователя
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	City        string    `json:"city,omitempty"`
	District    string    `json:"district,omitempty"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	Rating      float64   `json:"rating"`
	TotalTrades int       `json:"total_trades"`
	CreatedAt   time.Time `json:"created_at"`
}
