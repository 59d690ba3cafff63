package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat представляет чат, привязанный к принятому предложению об обмене
type Chat struct {
	ID        uuid.UUID `json:"id"`
	OfferID   uuid.UUID `json:"offer_id"`
	OfferedBy uuid.UUID `json:"offered_by"`
	OfferedTo uuid.UUID `json:"offered_to"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Дополнительные поля для API
	Messages    []Message `json:"messages,omitempty"`
	UnreadCount int       `json:"unread_count,omitempty"`
}

// Message представляет сообщение в чате
type Message struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Sender *User `json:"sender,omitempty"`
}

// IsParticipant проверяет, является ли пользователь участником чата
func (c *Chat) IsParticipant(userID uuid.UUID) bool {
	return c.OfferedBy == userID || c.OfferedTo == userID
}
