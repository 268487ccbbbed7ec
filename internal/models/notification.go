package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is a persisted copy of an event pushed to a user. Realtime
// delivery over the hub is best-effort; this row is the record.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Event string         `gorm:"type:varchar(60);not null;index" json:"event"`
	Title string         `gorm:"type:varchar(200)" json:"title"`
	Body  string         `gorm:"type:text" json:"body"`
	Data  datatypes.JSON `json:"data"` // event payload (project_id, bid_id, ...)

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
