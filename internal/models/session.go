package models

import "time"

// SessionPayload is the fixed-field snapshot mirrored between the durable
// session row and the per-request session state. Unknown keys from older
// rows are dropped on unmarshal.
type SessionPayload struct {
	// Permissions distinguishes nil (never loaded) from empty (loaded, no
	// grants), so it must not carry omitempty.
	Permissions []string          `json:"permissions"`
	DatasetID   string            `json:"dataset_id,omitempty"`
	DatasetName string            `json:"dataset_name,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// UserSession tracks signed-in cookie sessions. Rows are soft-invalidated
// (IsActive=false) and retained for audit; they are never deleted.
type UserSession struct {
	Base
	UserID       string         `json:"user_id"       gorm:"index;not null"`
	Token        string         `json:"-"             gorm:"uniqueIndex;not null"`
	PublicIP     string         `json:"public_ip"`
	LocalIP      string         `json:"local_ip"`
	BrowserInfo  string         `json:"browser_info"  gorm:"type:text"`
	Payload      SessionPayload `json:"-"             gorm:"type:longtext;serializer:json"`
	ExpiresAt    time.Time      `json:"expires_at"    gorm:"index;not null"`
	LastActivity time.Time      `json:"last_activity" gorm:"index;not null"`
	IsActive     bool           `json:"is_active"     gorm:"index;default:true"`
}

func (UserSession) TableName() string { return "user_sessions" }
