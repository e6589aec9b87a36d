package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentClient pairs one client profile with one rubric under an
// assignment. Unique per (assignment, client); soft-deleted via IsActive with
// reactivation on re-attach.
type AssignmentClient struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_assignment_client_pair,priority:1" json:"assignment_id"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"-"`

	ClientProfileID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_assignment_client_pair,priority:2" json:"client_profile_id"`
	ClientProfile   *ClientProfile `gorm:"foreignKey:ClientProfileID;references:ID" json:"client_profile,omitempty"`

	RubricID uuid.UUID         `gorm:"type:uuid;not null;index" json:"rubric_id"`
	Rubric   *EvaluationRubric `gorm:"foreignKey:RubricID;references:ID" json:"rubric,omitempty"`

	IsActive     bool `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	DisplayOrder int  `gorm:"column:display_order;not null;default:0" json:"display_order"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AssignmentClient) TableName() string {
	return "assignment_client"
}

func (ac *AssignmentClient) BeforeCreate(tx *gorm.DB) error {
	if ac.ID == uuid.Nil {
		ac.ID = uuid.New()
	}
	return nil
}
