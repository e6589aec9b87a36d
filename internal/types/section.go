package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseSection struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"-"`

	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"type:text;column:description" json:"description"`
	Term        string `gorm:"column:term" json:"term"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseSection) TableName() string {
	return "course_section"
}

func (s *CourseSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
