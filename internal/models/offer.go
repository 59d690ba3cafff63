package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferTTL срок жизни предложения по умолчанию
const OfferTTL = 24 * time.Hour

// Offer представляет предложение об обмене на конкретную вещь
type Offer struct {
	ID              uuid.UUID      `json:"id"`
	ItemID          uuid.UUID      `json:"item_id"`
	OfferedBy       uuid.UUID      `json:"offered_by"`
	OfferedTo       uuid.UUID      `json:"offered_to"`
	OfferedItems    []OfferedItem  `json:"offered_items"`
	Message         string         `json:"message"`
	Status          string         `json:"status"`
	ResponseMessage string         `json:"response_message,omitempty"`
	MeetingDetails  *MeetingDetail `json:"meeting_details,omitempty"`
	ExpiresAt       time.Time      `json:"expires_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Дополнительные поля для API
	Item     *Item      `json:"item,omitempty"`
	Sender   *User      `json:"sender,omitempty"`
	Receiver *User      `json:"receiver,omitempty"`
	ChatID   *uuid.UUID `json:"chat_id,omitempty"`
}

// OfferedItem представляет вещь, предлагаемую взамен. Это свободное описание,
// а не ссылка на существующее объявление.
type OfferedItem struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Condition      string      `json:"condition"`
	Images         []ItemImage `json:"images,omitempty"`
	EstimatedValue float64     `json:"estimated_value,omitempty"`
}

// MeetingDetail содержит договоренность о встрече для завершенного обмена
type MeetingDetail struct {
	Location string     `json:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// DefaultOfferExpiry возвращает срок истечения нового предложения
func DefaultOfferExpiry(now time.Time) time.Time {
	return now.Add(OfferTTL)
}
