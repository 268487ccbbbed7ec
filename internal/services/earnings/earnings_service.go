// Package earnings derives and repairs the freelancer ledger from project
// state. One row per (project, freelancer), enforced by a unique index; the
// lookup-before-insert below keeps the flip path (pending -> completed) cheap.
package earnings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/apperr"
	"github.com/workhive/workhive_be/internal/models"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// statusFor decides which ledger status a backfilled row gets.
func statusFor(p *models.Project) models.EarningStatus {
	if p.Status == models.ProjectCompleted {
		return models.EarningCompleted
	}
	return models.EarningPending
}

// EnsurePending creates a pending earning for the project's selected
// freelancer if none exists yet. Must run inside the caller's transaction.
// Returns whether a row was created.
func (s *Service) EnsurePending(tx *gorm.DB, project *models.Project) (bool, error) {
	if project.SelectedFreelancerID == nil || project.FinalBidAmount == nil {
		return false, apperr.InvalidState("project %s has no selected freelancer or final amount", project.ID)
	}
	fid := *project.SelectedFreelancerID

	var existing models.Earning
	err := tx.Where("project_id = ? AND freelancer_id = ?", project.ID, fid).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperr.Persistence(err)
	}

	row := models.Earning{
		ProjectID:    project.ID,
		FreelancerID: fid,
		ClientID:     project.ClientID,
		Amount:       *project.FinalBidAmount,
		Status:       models.EarningPending,
		EarnedAt:     time.Now(),
	}
	if err := tx.Create(&row).Error; err != nil {
		return false, apperr.Persistence(err)
	}
	return true, nil
}

// ReconcileCompletion brings the ledger in line with a project that reached
// "completed": flips an existing pending row or creates a completed one.
func (s *Service) ReconcileCompletion(project *models.Project) error {
	if project.SelectedFreelancerID == nil || project.FinalBidAmount == nil {
		return apperr.InvalidState("project %s has no selected freelancer or final amount", project.ID)
	}
	fid := *project.SelectedFreelancerID

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Earning
		err := tx.Where("project_id = ? AND freelancer_id = ?", project.ID, fid).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.Status == models.EarningCompleted {
				return nil
			}
			if err := tx.Model(&models.Earning{}).
				Where("id = ?", existing.ID).
				Update("status", models.EarningCompleted).Error; err != nil {
				return apperr.Persistence(err)
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.Earning{
				ProjectID:    project.ID,
				FreelancerID: fid,
				ClientID:     project.ClientID,
				Amount:       *project.FinalBidAmount,
				Status:       models.EarningCompleted,
				EarnedAt:     time.Now(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperr.Persistence(err)
			}
			return nil
		default:
			return apperr.Persistence(err)
		}
	})
}

// SyncMissing backfills ledger rows for one freelancer from project state:
// every project they were selected for that is completed or at 100% progress
// and has a final amount but no earning row gets one. Safe to call repeatedly.
func (s *Service) SyncMissing(freelancerID uuid.UUID) (int, error) {
	var projects []models.Project
	if err := s.DB.
		Where("selected_freelancer_id = ?", freelancerID).
		Where("status = ? OR progress = ?", models.ProjectCompleted, 100).
		Find(&projects).Error; err != nil {
		return 0, apperr.Persistence(err)
	}

	created := 0
	for i := range projects {
		p := &projects[i]
		if p.FinalBidAmount == nil {
			continue
		}

		var existing models.Earning
		err := s.DB.Where("project_id = ? AND freelancer_id = ?", p.ID, freelancerID).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, apperr.Persistence(err)
		}

		row := models.Earning{
			ProjectID:    p.ID,
			FreelancerID: freelancerID,
			ClientID:     p.ClientID,
			Amount:       *p.FinalBidAmount,
			Status:       statusFor(p),
			EarnedAt:     time.Now(),
		}
		if err := s.DB.Create(&row).Error; err != nil {
			return created, apperr.Persistence(err)
		}
		created++
	}
	return created, nil
}

// Summary totals a freelancer's ledger by status.
type Summary struct {
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

func (s *Service) Summarize(freelancerID uuid.UUID) (Summary, error) {
	var out Summary
	err := s.DB.Model(&models.Earning{}).
		Where("freelancer_id = ? AND status = ?", freelancerID, models.EarningPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.Pending).Error
	if err != nil {
		return out, apperr.Persistence(err)
	}
	err = s.DB.Model(&models.Earning{}).
		Where("freelancer_id = ? AND status = ?", freelancerID, models.EarningCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.Completed).Error
	if err != nil {
		return out, apperr.Persistence(err)
	}
	return out, nil
}
