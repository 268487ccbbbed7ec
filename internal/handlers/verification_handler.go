package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
)

// VerificationHandler drives the freelancer identity verification flow:
// draft -> pending_review -> approved/rejected.
type VerificationHandler struct {
	DB       *gorm.DB
	Notifier *notifications.Notifier
}

func NewVerificationHandler(db *gorm.DB, notifier *notifications.Notifier) *VerificationHandler {
	return &VerificationHandler{DB: db, Notifier: notifier}
}

func (h *VerificationHandler) profileFor(c *fiber.Ctx) (*models.FreelancerProfile, error) {
	uid, err := getAuth(c)
	if err != nil {
		return nil, err
	}
	var profile models.FreelancerProfile
	if err := h.DB.Where("user_id = ?", uid).First(&profile).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Profile not found")
	}
	return &profile, nil
}

func (h *VerificationHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profileFor(c)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, profile)
}

type UpdateProfileReq struct {
	Headline   string   `json:"headline" validate:"max=150"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	HourlyRate int64    `json:"hourly_rate" validate:"gte=0"`
}

func (h *VerificationHandler) UpdateProfile(c *fiber.Ctx) error {
	profile, err := h.profileFor(c)
	if err != nil {
		return fail(c, err)
	}

	var req UpdateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	profile.Headline = req.Headline
	profile.Bio = req.Bio
	profile.HourlyRate = req.HourlyRate
	if req.Skills != nil {
		skillsJSON, _ := json.Marshal(req.Skills)
		profile.Skills = datatypes.JSON(skillsJSON)
	}
	if err := h.DB.Save(profile).Error; err != nil {
		log.Println("profile update:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to update profile",
		})
	}
	return ok(c, profile)
}

type UpdateIdentityReq struct {
	LegalName      string `json:"legal_name" validate:"required,max=160"`
	DocumentType   string `json:"document_type" validate:"required,oneof=passport national_id driver_license"`
	DocumentNumber string `json:"document_number" validate:"required,max=60"`
	Country        string `json:"country" validate:"required,max=80"`
}

// UpdateIdentity records identity document details while in draft.
func (h *VerificationHandler) UpdateIdentity(c *fiber.Ctx) error {
	profile, err := h.profileFor(c)
	if err != nil {
		return fail(c, err)
	}
	if profile.VerificationStatus == models.VerificationPendingReview ||
		profile.VerificationStatus == models.VerificationApproved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Identity cannot be changed while " + string(profile.VerificationStatus),
		})
	}

	var req UpdateIdentityReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	profile.LegalName = req.LegalName
	profile.DocumentType = req.DocumentType
	profile.DocumentNumber = req.DocumentNumber
	profile.Country = req.Country
	profile.VerificationStatus = models.VerificationDraft
	if err := h.DB.Save(profile).Error; err != nil {
		log.Println("identity update:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to update identity",
		})
	}
	return ok(c, profile)
}

// Submit moves the profile into pending_review.
func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	profile, err := h.profileFor(c)
	if err != nil {
		return fail(c, err)
	}
	if profile.VerificationStatus == models.VerificationPendingReview {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Already submitted for review",
		})
	}
	if profile.VerificationStatus == models.VerificationApproved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Already verified",
		})
	}
	if profile.LegalName == "" || profile.DocumentNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Identity details are required before submitting",
		})
	}

	now := time.Now()
	profile.VerificationStatus = models.VerificationPendingReview
	profile.SubmittedAt = &now
	if err := h.DB.Save(profile).Error; err != nil {
		log.Println("verification submit:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to submit",
		})
	}
	return ok(c, profile)
}

type ReviewVerificationReq struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// Review is the admin decision on a pending verification.
func (h *VerificationHandler) Review(c *fiber.Ctx) error {
	profileID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req ReviewVerificationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	var profile models.FreelancerProfile
	if err := h.DB.First(&profile, "id = ?", profileID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}
	if profile.VerificationStatus != models.VerificationPendingReview {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Profile is not pending review",
		})
	}

	now := time.Now()
	if req.Approve {
		profile.VerificationStatus = models.VerificationApproved
	} else {
		profile.VerificationStatus = models.VerificationRejected
	}
	profile.ReviewNote = req.Note
	profile.ReviewedAt = &now
	if err := h.DB.Save(&profile).Error; err != nil {
		log.Println("verification review:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to save review",
		})
	}

	h.Notifier.Notify(profile.UserID, notifications.EventVerificationReviewed, map[string]interface{}{
		"status": string(profile.VerificationStatus),
	})

	return ok(c, profile)
}

// ListPending returns profiles awaiting admin review.
func (h *VerificationHandler) ListPending(c *fiber.Ctx) error {
	var list []models.FreelancerProfile
	if err := h.DB.Where("verification_status = ?", models.VerificationPendingReview).
		Order("submitted_at ASC").
		Find(&list).Error; err != nil {
		log.Println("verification pending list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch pending verifications",
		})
	}
	return ok(c, list)
}
