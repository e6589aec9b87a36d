package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClientProfile is a simulated client persona owned by a teacher. Its fields
// feed the system prompt that shapes the LLM's in-character replies.
type ClientProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"-"`

	Name                string         `gorm:"column:name;not null" json:"name"`
	Age                 int            `gorm:"column:age" json:"age"`
	Race                string         `gorm:"column:race" json:"race"`
	Gender              string         `gorm:"column:gender" json:"gender"`
	SocioeconomicStatus string         `gorm:"column:socioeconomic_status" json:"socioeconomic_status"`
	Issues              datatypes.JSON `gorm:"type:jsonb;column:issues" json:"issues"`
	BackgroundStory     string         `gorm:"type:text;column:background_story" json:"background_story"`
	PersonalityTraits   datatypes.JSON `gorm:"type:jsonb;column:personality_traits" json:"personality_traits"`
	CommunicationStyle  string         `gorm:"column:communication_style" json:"communication_style"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ClientProfile) TableName() string {
	return "client_profile"
}

func (p *ClientProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
