package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"section_id"`
	Section   *CourseSection `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"-"`

	Title          string `gorm:"column:title;not null" json:"title"`
	Description    string `gorm:"type:text;column:description" json:"description"`
	AssignmentType string `gorm:"column:assignment_type;not null;default:'practice'" json:"assignment_type"`

	// Scheduling window. DueDate must not precede AvailableFrom.
	AvailableFrom *time.Time `gorm:"column:available_from" json:"available_from,omitempty"`
	DueDate       *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`

	IsPublished bool `gorm:"column:is_published;not null;default:false;index" json:"is_published"`
	IsActive    bool `gorm:"column:is_active;not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignment"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
