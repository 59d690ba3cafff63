package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы жалобы
const (
	ReportStatusPending       = "pending"
	ReportStatusInvestigating = "investigating"
	ReportStatusResolved      = "resolved"
	ReportStatusDismissed     = "dismissed"
)

// Типы жалоб
var ValidReportTypes = map[string]bool{
	"fraudulent_behavior":   true,
	"inappropriate_content": true,
	"prohibited_items":      true,
	"spam":                  true,
	"no_response":           true,
	"harassment":            true,
	"other":                 true,
}

// Типы объектов жалобы
var ValidTargetTypes = map[string]bool{
	"user":  true,
	"item":  true,
	"offer": true,
}

// Меры, принимаемые администратором по жалобе
var ValidActions = map[string]bool{
	"none":            true,
	"warning_sent":    true,
	"content_removed": true,
	"user_suspended":  true,
	"user_banned":     true,
	"other":           true,
}

// Report представляет жалобу на пользователя, вещь или предложение
type Report struct {
	ID          uuid.UUID   `json:"id"`
	ReportedBy  uuid.UUID   `json:"reported_by"`
	ReportType  string      `json:"report_type"`
	TargetType  string      `json:"target_type"`
	TargetID    uuid.UUID   `json:"target_id"`
	Description string      `json:"description"`
	Evidence    []ItemImage `json:"evidence,omitempty"`
	ChatHistory string      `json:"chat_history,omitempty"`
	Status      string      `json:"status"`
	AdminNotes  string      `json:"admin_notes,omitempty"`
	ActionTaken string      `json:"action_taken,omitempty"`
	ResolvedBy  *uuid.UUID  `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Дополнительные поля для API
	Reporter *User `json:"reporter,omitempty"`
}
