package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SectionEnrollment is soft-deleted via IsActive so that re-enrolling a
// student reactivates the original row instead of duplicating it.
type SectionEnrollment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_enrollment_section_student,priority:1" json:"section_id"`
	Section   *CourseSection `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"-"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_enrollment_section_student,priority:2" json:"student_id"`
	Student   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	Role     string `gorm:"column:role;not null;default:'student'" json:"role"`
	IsActive bool   `gorm:"column:is_active;not null;default:true;index" json:"is_active"`

	EnrolledAt time.Time `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (SectionEnrollment) TableName() string {
	return "section_enrollment"
}

func (e *SectionEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	return nil
}
