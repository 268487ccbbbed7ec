package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EarningStatus string

const (
	EarningPending   EarningStatus = "pending"
	EarningCompleted EarningStatus = "completed"
)

func ValidEarningStatus(s EarningStatus) bool {
	switch s {
	case EarningPending, EarningCompleted:
		return true
	default:
		return false
	}
}

// Earning is one ledger row per (project, freelancer). The composite unique
// index makes duplicate creation impossible even when two requests race the
// lookup-before-insert.
type Earning struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_earnings_project_freelancer" json:"project_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_earnings_project_freelancer" json:"freelancer_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Amount int64         `gorm:"not null" json:"amount"`
	Status EarningStatus `gorm:"type:varchar(20);not null" json:"status"`

	EarnedAt  time.Time `json:"earned_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project    *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (e *Earning) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
