package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
)

type ReviewHandler struct {
	DB       *gorm.DB
	Notifier *notifications.Notifier
}

func NewReviewHandler(db *gorm.DB, notifier *notifications.Notifier) *ReviewHandler {
	return &ReviewHandler{DB: db, Notifier: notifier}
}

type CreateReviewReq struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Create posts the client's review of the freelancer on a completed project.
// One review per project, enforced by a unique index.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req CreateReviewReq
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

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}
	if project.ClientID != uid {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Only the owning client can review",
		})
	}
	if project.Status != models.ProjectCompleted || project.SelectedFreelancerID == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Only completed projects can be reviewed",
		})
	}

	var existing models.Review
	if err := h.DB.Where("project_id = ?", projectID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Project already reviewed",
		})
	}

	review := models.Review{
		ProjectID:    projectID,
		ClientID:     uid,
		FreelancerID: *project.SelectedFreelancerID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		log.Println("review create:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to create review",
		})
	}

	h.Notifier.Notify(review.FreelancerID, notifications.EventReviewReceived, map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"rating":     req.Rating,
	})

	return created(c, review)
}

// ListForFreelancer returns a freelancer's reviews plus the average rating.
func (h *ReviewHandler) ListForFreelancer(c *fiber.Ctx) error {
	freelancerID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var list []models.Review
	if err := h.DB.Preload("Client").Preload("Project").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		log.Println("review list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch reviews",
		})
	}

	var avg float64
	h.DB.Model(&models.Review{}).
		Where("freelancer_id = ?", freelancerID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"meta":    fiber.Map{"average_rating": avg, "count": len(list)},
	})
}
