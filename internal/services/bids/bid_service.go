// Package bids implements the bid lifecycle engine: submission against open
// projects, client accept/reject, and the counter-offer round trip. Accepting
// a bid locks in the project's freelancer and price inside one transaction.
package bids

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workhive/workhive_be/internal/apperr"
	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
)

const (
	ProposalMinLen  = 50
	ProposalMaxLen  = 1000
	DeliveryMinDays = 1
	DeliveryMaxDays = 365
)

type Notifier interface {
	Notify(userID uuid.UUID, event string, data map[string]interface{})
	NotifyProject(projectID uuid.UUID, event string, data map[string]interface{})
}

type Service struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{DB: db, Notifier: notifier}
}

// Submit places a pending bid on an open project and mirrors the bid id into
// the project's bid list.
func (s *Service) Submit(projectID, freelancerID uuid.UUID, amount int64, proposal string, deliveryDays int) (*models.Bid, error) {
	if amount <= 0 {
		return nil, apperr.InvalidRange("bid amount must be positive, got %d", amount)
	}
	if l := len(proposal); l < ProposalMinLen || l > ProposalMaxLen {
		return nil, apperr.InvalidRange("proposal must be %d-%d characters, got %d", ProposalMinLen, ProposalMaxLen, l)
	}
	if deliveryDays < DeliveryMinDays || deliveryDays > DeliveryMaxDays {
		return nil, apperr.InvalidRange("delivery time must be %d-%d days, got %d", DeliveryMinDays, DeliveryMaxDays, deliveryDays)
	}

	var project models.Project
	bid := models.Bid{
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Amount:       amount,
		Proposal:     proposal,
		DeliveryDays: deliveryDays,
		Status:       models.BidPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project %s not found", projectID)
			}
			return apperr.Persistence(err)
		}
		if project.Status != models.ProjectOpen {
			return apperr.InvalidState("cannot bid on a %s project", project.Status)
		}

		if err := tx.Create(&bid).Error; err != nil {
			return apperr.Persistence(err)
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("bid_ids", appendBidID(project.BidIDs, bid.ID)).Error; err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"bid_id":     bid.ID.String(),
		"freelancer": freelancerID.String(),
		"amount":     amount,
	}
	s.Notifier.NotifyProject(project.ID, notifications.EventBidReceived, data)
	s.Notifier.Notify(project.ClientID, notifications.EventBidReceived, data)

	return &bid, nil
}

// appendBidID grows the project's auxiliary bid id list. The list is a
// mirror; the authoritative set is the bids table filtered by project_id.
func appendBidID(raw datatypes.JSON, id uuid.UUID) datatypes.JSON {
	var ids []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ids); err != nil {
			log.Printf("bids: resetting malformed bid_ids column: %v", err)
			ids = nil
		}
	}
	ids = append(ids, id.String())
	out, _ := json.Marshal(ids)
	return datatypes.JSON(out)
}

// UpdateStatus lets the owning client accept or reject a bid. Acceptance also
// assigns the project's freelancer, final amount, start date and moves it to
// in-progress, all in one transaction. Competing bids are left untouched.
func (s *Service) UpdateStatus(bidID, actorID uuid.UUID, newStatus models.BidStatus) (*models.Bid, error) {
	if newStatus != models.BidAccepted && newStatus != models.BidRejected {
		return nil, apperr.InvalidState("bid status can only be set to accepted or rejected, got %q", newStatus)
	}

	var bid models.Bid
	var project models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bid, "id = ?", bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bid %s not found", bidID)
			}
			return apperr.Persistence(err)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&project, "id = ?", bid.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project %s not found", bid.ProjectID)
			}
			return apperr.Persistence(err)
		}

		if project.ClientID != actorID {
			return apperr.Forbidden("only the owning client can update bid status")
		}

		if newStatus == models.BidAccepted {
			if project.Status != models.ProjectOpen {
				return apperr.InvalidState("cannot accept a bid on a %s project", project.Status)
			}
			now := time.Now()
			if err := tx.Model(&models.Project{}).
				Where("id = ?", project.ID).
				Updates(map[string]interface{}{
					"selected_freelancer_id": bid.FreelancerID,
					"final_bid_amount":       bid.Amount,
					"status":                 models.ProjectInProgress,
					"start_date":             now,
				}).Error; err != nil {
				return apperr.Persistence(err)
			}
			project.SelectedFreelancerID = &bid.FreelancerID
			project.FinalBidAmount = &bid.Amount
			project.Status = models.ProjectInProgress
			project.StartDate = &now
		}

		if err := tx.Model(&models.Bid{}).
			Where("id = ?", bid.ID).
			Update("status", newStatus).Error; err != nil {
			return apperr.Persistence(err)
		}
		bid.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := notifications.EventBidRejected
	if newStatus == models.BidAccepted {
		event = notifications.EventBidAccepted
	}
	s.Notifier.Notify(bid.FreelancerID, event, map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"bid_id":     bid.ID.String(),
		"amount":     bid.Amount,
	})

	return &bid, nil
}

// Counter records a client counter-offer on a pending bid.
func (s *Service) Counter(bidID, actorID uuid.UUID, amount int64, message string) (*models.Bid, error) {
	if amount <= 0 {
		return nil, apperr.InvalidRange("counter amount must be positive, got %d", amount)
	}

	var bid models.Bid
	var project models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bid, "id = ?", bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bid %s not found", bidID)
			}
			return apperr.Persistence(err)
		}
		if err := tx.First(&project, "id = ?", bid.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project %s not found", bid.ProjectID)
			}
			return apperr.Persistence(err)
		}

		if project.ClientID != actorID {
			return apperr.Forbidden("only the owning client can counter a bid")
		}
		if bid.Status != models.BidPending {
			return apperr.InvalidState("only pending bids can be countered, bid is %s", bid.Status)
		}

		now := time.Now()
		if err := tx.Model(&models.Bid{}).
			Where("id = ?", bid.ID).
			Updates(map[string]interface{}{
				"status":          models.BidCountered,
				"counter_amount":  amount,
				"counter_message": message,
				"counter_at":      now,
			}).Error; err != nil {
			return apperr.Persistence(err)
		}
		bid.Status = models.BidCountered
		bid.CounterAmount = &amount
		bid.CounterMessage = &message
		bid.CounterAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(bid.FreelancerID, notifications.EventBidCountered, map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"bid_id":     bid.ID.String(),
		"amount":     amount,
	})

	return &bid, nil
}

// AcceptCounter lets the freelancer take the countered amount. The bid
// re-enters pending with the new amount; the client still has to accept it.
func (s *Service) AcceptCounter(bidID, actorID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	var project models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bid, "id = ?", bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bid %s not found", bidID)
			}
			return apperr.Persistence(err)
		}

		if bid.FreelancerID != actorID {
			return apperr.Forbidden("only the bid's freelancer can accept a counter-offer")
		}
		if bid.Status != models.BidCountered || !bid.HasCounter() {
			return apperr.InvalidState("bid %s has no counter-offer to accept", bid.ID)
		}

		if err := tx.First(&project, "id = ?", bid.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project %s not found", bid.ProjectID)
			}
			return apperr.Persistence(err)
		}

		newAmount := *bid.CounterAmount
		if err := tx.Model(&models.Bid{}).
			Where("id = ?", bid.ID).
			Updates(map[string]interface{}{
				"amount":          newAmount,
				"status":          models.BidPending,
				"counter_amount":  nil,
				"counter_message": nil,
				"counter_at":      nil,
			}).Error; err != nil {
			return apperr.Persistence(err)
		}
		bid.Amount = newAmount
		bid.Status = models.BidPending
		bid.CounterAmount = nil
		bid.CounterMessage = nil
		bid.CounterAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"bid_id":     bid.ID.String(),
		"freelancer": bid.FreelancerID.String(),
		"amount":     bid.Amount,
	}
	s.Notifier.NotifyProject(project.ID, notifications.EventCounterAccepted, data)
	s.Notifier.Notify(project.ClientID, notifications.EventCounterAccepted, data)

	return &bid, nil
}

// Withdraw deletes the freelancer's own pending bid.
func (s *Service) Withdraw(bidID, actorID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var bid models.Bid
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bid, "id = ?", bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("bid %s not found", bidID)
			}
			return apperr.Persistence(err)
		}
		if bid.FreelancerID != actorID {
			return apperr.Forbidden("only the bid's freelancer can withdraw it")
		}
		if bid.Status != models.BidPending {
			return apperr.InvalidState("only pending bids can be withdrawn, bid is %s", bid.Status)
		}
		if err := tx.Delete(&models.Bid{}, "id = ?", bid.ID).Error; err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
}
