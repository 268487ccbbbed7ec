package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidCountered BidStatus = "countered"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidAccepted, BidRejected, BidCountered:
		return true
	default:
		return false
	}
}

type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_id"`

	Amount       int64  `gorm:"not null" json:"amount"`
	Proposal     string `gorm:"type:text;not null" json:"proposal"` // 50..1000 chars
	DeliveryDays int    `gorm:"not null" json:"delivery_days"`      // 1..365

	Status BidStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// Counter-offer sub-record. All three are set together while status is
	// "countered" and cleared when the freelancer accepts.
	CounterAmount  *int64     `json:"counter_amount,omitempty"`
	CounterMessage *string    `gorm:"type:text" json:"counter_message,omitempty"`
	CounterAt      *time.Time `json:"counter_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project    *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

// HasCounter reports whether the counter-offer sub-record is present.
func (b *Bid) HasCounter() bool {
	return b.CounterAmount != nil
}

func (b *Bid) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
