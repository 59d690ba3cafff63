package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы вещи
const (
	ItemStatusActive    = "active"
	ItemStatusInactive  = "inactive"
	ItemStatusCompleted = "completed"
	ItemStatusRemoved   = "removed"
)

// ItemTTL срок жизни объявления по умолчанию
const ItemTTL = 30 * 24 * time.Hour

// Категории вещей
var ValidCategories = map[string]bool{
	"electronics":       true,
	"clothing":          true,
	"books":             true,
	"home_garden":       true,
	"sports_outdoors":   true,
	"toys_games":        true,
	"collectibles":      true,
	"automotive":        true,
	"music_instruments": true,
	"art_crafts":        true,
	"tools":             true,
	"other":             true,
}

// Состояния вещей
var ValidConditions = map[string]bool{
	"new":      true,
	"like_new": true,
	"good":     true,
	"fair":     true,
	"poor":     true,
}

// Categories возвращает список всех категорий для клиента
func Categories() []string {
	return []string{
		"electronics", "clothing", "books", "home_garden", "sports_outdoors",
		"toys_games", "collectibles", "automotive", "music_instruments",
		"art_crafts", "tools", "other",
	}
}

// Item представляет вещь, выставленную на обмен
type Item struct {
	ID                uuid.UUID   `json:"id"`
	OwnerID           uuid.UUID   `json:"owner_id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Category          string      `json:"category"`
	Condition         string      `json:"condition"`
	City              string      `json:"city"`
	District          string      `json:"district"`
	WantedDescription string      `json:"wanted_description"`
	WantedCategories  []string    `json:"wanted_categories"`
	Images            []ItemImage `json:"images"`
	Status            string      `json:"status"`
	Views             int64       `json:"views"`
	ExpiresAt         time.Time   `json:"expires_at"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	// Дополнительные поля для API
	Owner       *User `json:"owner,omitempty"`
	IsFavorite  bool  `json:"is_favorite,omitempty"`
	OfferCount  int   `json:"offer_count,omitempty"`
	IsOwnerView bool  `json:"-"`
}

// ItemImage представляет изображение вещи, загруженное в Cloudinary
type ItemImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// MaxItemImages максимальное число изображений у вещи
const MaxItemImages = 5

// CapImages добавляет новые изображения к существующим и обрезает список
// до лимита, отбрасывая самые старые. Возвращает итоговый список и отброшенные.
func CapImages(existing, added []ItemImage) (kept, dropped []ItemImage) {
	all := append(append([]ItemImage{}, existing...), added...)
	if len(all) <= MaxItemImages {
		return all, nil
	}
	cut := len(all) - MaxItemImages
	return all[cut:], all[:cut]
}

// DefaultItemExpiry возвращает срок истечения нового объявления
func DefaultItemExpiry(now time.Time) time.Time {
	return now.Add(ItemTTL)
}
