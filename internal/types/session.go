package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"-"`

	ClientProfileID uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_profile_id"`
	ClientProfile   *ClientProfile `gorm:"foreignKey:ClientProfileID;references:ID" json:"client_profile,omitempty"`

	// Set when the conversation was started from a published assignment.
	AssignmentClientID *uuid.UUID        `gorm:"type:uuid;index" json:"assignment_client_id,omitempty"`
	AssignmentClient   *AssignmentClient `gorm:"foreignKey:AssignmentClientID;references:ID" json:"-"`

	Status string `gorm:"column:status;not null;default:'active';index" json:"status"`

	// Per-session message sequencing: claimed atomically before each insert so
	// (session_id, seq) stays unique and gap-free per writer.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"next_seq"`

	TotalTokens   int     `gorm:"column:total_tokens;not null;default:0" json:"total_tokens"`
	EstimatedCost float64 `gorm:"column:estimated_cost;not null;default:0" json:"estimated_cost"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string {
	return "session"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return nil
}
