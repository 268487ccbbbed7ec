package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationDraft         VerificationStatus = "draft"
	VerificationPendingReview VerificationStatus = "pending_review"
	VerificationApproved      VerificationStatus = "approved"
	VerificationRejected      VerificationStatus = "rejected"
)

type FreelancerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Headline   string         `gorm:"type:varchar(150)" json:"headline"`
	Bio        string         `gorm:"type:text" json:"bio"`
	Skills     datatypes.JSON `json:"skills"`
	HourlyRate int64          `json:"hourly_rate"`

	// Identity document details submitted for verification
	LegalName      string `gorm:"type:varchar(160)" json:"legal_name"`
	DocumentType   string `gorm:"type:varchar(40)" json:"document_type"` // passport, national_id, driver_license
	DocumentNumber string `gorm:"type:varchar(60)" json:"document_number"`
	Country        string `gorm:"type:varchar(80)" json:"country"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(30);not null;default:'draft'" json:"verification_status"`
	ReviewNote         string             `gorm:"type:text" json:"review_note"`
	SubmittedAt        *time.Time         `json:"submitted_at,omitempty"`
	ReviewedAt         *time.Time         `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *FreelancerProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
