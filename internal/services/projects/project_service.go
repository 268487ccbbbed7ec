// Package projects implements the project lifecycle engine: the status
// transition table, progress updates, and the earnings side effect on
// completion.
package projects

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workhive/workhive_be/internal/apperr"
	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
	"github.com/workhive/workhive_be/internal/services/earnings"
)

// Notifier is the push-notification sink the engine emits into. Delivery is
// best-effort and never fails the operation.
type Notifier interface {
	Notify(userID uuid.UUID, event string, data map[string]interface{})
	NotifyProject(projectID uuid.UUID, event string, data map[string]interface{})
}

type Service struct {
	DB       *gorm.DB
	Earnings *earnings.Service
	Notifier Notifier
}

func NewService(db *gorm.DB, earningsSvc *earnings.Service, notifier Notifier) *Service {
	return &Service{DB: db, Earnings: earningsSvc, Notifier: notifier}
}

// TransitionResult reports the primary transition outcome and, separately,
// whether the best-effort earnings side effect failed. SideEffectErr being
// non-nil never means the transition failed.
type TransitionResult struct {
	Project       *models.Project
	SideEffectErr error
}

// Transition moves a project to target per the status table. Only the owning
// client may transition. Reaching "completed" reconciles the earnings ledger
// as a best-effort side effect.
func (s *Service) Transition(projectID, actorID uuid.UUID, target models.ProjectStatus) (*TransitionResult, error) {
	if !models.ValidProjectStatus(target) {
		return nil, apperr.InvalidState("unknown project status %q", target)
	}

	var project models.Project
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project %s not found", projectID)
			}
			return apperr.Persistence(err)
		}

		if project.ClientID != actorID {
			return apperr.Forbidden("only the owning client can change project status")
		}
		if !models.CanTransition(project.Status, target) {
			return apperr.InvalidTransition(string(project.Status), string(target))
		}
		if target == models.ProjectInProgress && project.SelectedFreelancerID == nil {
			return apperr.InvalidState("project has no selected freelancer")
		}

		now := time.Now()
		updates := map[string]interface{}{"status": target}
		if target == models.ProjectCompleted {
			updates["completion_date"] = now
			project.CompletionDate = &now
		}
		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Updates(updates).Error; err != nil {
			return apperr.Persistence(err)
		}
		project.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Project: &project}

	// Ledger reconciliation is deliberately outside the transition
	// transaction: its failure must not roll the status change back.
	if target == models.ProjectCompleted {
		if err := s.Earnings.ReconcileCompletion(&project); err != nil {
			log.Printf("project %s: earnings reconciliation failed: %v", project.ID, err)
			result.SideEffectErr = err
		} else if project.SelectedFreelancerID != nil {
			s.Notifier.Notify(*project.SelectedFreelancerID, notifications.EventEarningCompleted, map[string]interface{}{
				"project":    project.Title,
				"project_id": project.ID.String(),
				"amount":     derefAmount(project.FinalBidAmount),
			})
		}
	}

	s.Notifier.NotifyProject(project.ID, notifications.EventProjectStatus, map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"status":     string(project.Status),
	})

	return result, nil
}

// ProgressResult carries the updated project and whether the 100% milestone
// created a pending earning.
type ProgressResult struct {
	Project        *models.Project
	EarningCreated bool
}

// UpdateProgress sets the progress percentage. Only the selected freelancer
// reports progress. Hitting exactly 100 while in-progress creates a pending
// earning (idempotent); the status is left for the client to complete.
func (s *Service) UpdateProgress(projectID, actorID uuid.UUID, newProgress int) (*ProgressResult, error) {
	if newProgress < 0 || newProgress > 100 {
		return nil, apperr.InvalidRange("progress must be between 0 and 100, got %d", newProgress)
	}

	var project models.Project
	created := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project %s not found", projectID)
			}
			return apperr.Persistence(err)
		}

		if project.SelectedFreelancerID == nil {
			return apperr.InvalidState("project has no selected freelancer")
		}
		if *project.SelectedFreelancerID != actorID {
			return apperr.Forbidden("only the selected freelancer can report progress")
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("progress", newProgress).Error; err != nil {
			return apperr.Persistence(err)
		}
		project.Progress = newProgress

		if newProgress == 100 && project.Status == models.ProjectInProgress {
			var err error
			created, err = s.Earnings.EnsurePending(tx, &project)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.NotifyProject(project.ID, notifications.EventProjectProgress, map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"progress":   newProgress,
	})
	if created {
		s.Notifier.Notify(*project.SelectedFreelancerID, notifications.EventEarningCreated, map[string]interface{}{
			"project":    project.Title,
			"project_id": project.ID.String(),
			"amount":     derefAmount(project.FinalBidAmount),
		})
	}

	return &ProgressResult{Project: &project, EarningCreated: created}, nil
}

func derefAmount(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
