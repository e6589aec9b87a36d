package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AICallLog records one outbound LLM call for auditing and cost review.
type AICallLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionID *uuid.UUID `gorm:"type:uuid;index" json:"session_id,omitempty"`

	CallType string `gorm:"column:call_type;not null" json:"call_type"`
	Model    string `gorm:"column:model;not null" json:"model"`

	Success       bool   `gorm:"column:success;not null" json:"success"`
	Error         string `gorm:"column:error" json:"error,omitempty"`
	ErrorCategory string `gorm:"column:error_category;index" json:"error_category,omitempty"`

	InputTokens   int     `gorm:"column:input_tokens;not null;default:0" json:"input_tokens"`
	OutputTokens  int     `gorm:"column:output_tokens;not null;default:0" json:"output_tokens"`
	EstimatedCost float64 `gorm:"column:estimated_cost;not null;default:0" json:"estimated_cost"`
	LatencyMS     int64   `gorm:"column:latency_ms;not null;default:0" json:"latency_ms"`

	Usage datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AICallLog) TableName() string {
	return "ai_call_log"
}

func (l *AICallLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
