package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	default:
		return false
	}
}

// projectTransitions is the full transition table. completed and cancelled are
// terminal and have no outgoing edges.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectOpen:       {ProjectInProgress, ProjectCancelled},
	ProjectInProgress: {ProjectCompleted, ProjectCancelled},
}

// CanTransition reports whether status may move from -> to.
func CanTransition(from, to ProjectStatus) bool {
	for _, s := range projectTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Project struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	BudgetMin    int64          `gorm:"not null" json:"budget_min"`
	BudgetMax    int64          `gorm:"not null" json:"budget_max"`
	DurationDays int            `json:"duration_days"`
	Skills       datatypes.JSON `json:"skills"` // ["golang", "postgres", ...]

	Status   ProjectStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Progress int           `gorm:"default:0" json:"progress"` // 0..100

	SelectedFreelancerID *uuid.UUID `gorm:"type:uuid;index" json:"selected_freelancer_id,omitempty"`
	FinalBidAmount       *int64     `json:"final_bid_amount,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	CompletionDate       *time.Time `json:"completion_date,omitempty"`

	// BidIDs mirrors the bids placed on this project. The authoritative set is
	// all bids with matching project_id; this column is appended on submit and
	// may lag behind.
	BidIDs datatypes.JSON `json:"bid_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client             *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	SelectedFreelancer *User `gorm:"foreignKey:SelectedFreelancerID" json:"selected_freelancer,omitempty"`
	Bids               []Bid `gorm:"foreignKey:ProjectID" json:"bids,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
