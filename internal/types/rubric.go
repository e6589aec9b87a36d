package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RubricCriterion is the element type stored in EvaluationRubric.Criteria.
// Weights across a rubric must sum to 1.0; names must be unique.
type RubricCriterion struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Weight           float64  `json:"weight"`
	EvaluationPoints []string `json:"evaluation_points,omitempty"`
}

type EvaluationRubric struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"-"`

	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"type:text;column:description" json:"description"`
	Criteria    datatypes.JSON `gorm:"type:jsonb;column:criteria;not null" json:"criteria"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EvaluationRubric) TableName() string {
	return "evaluation_rubric"
}

func (r *EvaluationRubric) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
