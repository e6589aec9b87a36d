package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_message_session_seq,priority:1" json:"session_id"`
	Session   *Session  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"-"`

	Seq int64 `gorm:"column:seq;not null;uniqueIndex:idx_message_session_seq,priority:2" json:"seq"`

	Role       string `gorm:"column:role;not null;index" json:"role"`
	Content    string `gorm:"type:text;column:content;not null" json:"content"`
	TokenCount int    `gorm:"column:token_count;not null;default:0" json:"token_count"`
	Model      string `gorm:"column:model" json:"model,omitempty"`

	// Carries flags like {"fallback": true} for circuit-breaker replies.
	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Message) TableName() string {
	return "message"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
