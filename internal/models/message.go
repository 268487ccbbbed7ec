package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a project-scoped chat message between the owning client and a
// freelancer (bidder or selected).
type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	SenderID    uuid.UUID `gorm:"type:uuid;index;not null" json:"sender_id"`
	RecipientID uuid.UUID `gorm:"type:uuid;index;not null" json:"recipient_id"`

	Type string `gorm:"type:varchar(20);default:'text'" json:"type"` // text, system
	Text string `gorm:"type:text;not null" json:"text"`

	IsRead bool       `gorm:"default:false" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
