package handlers

import (
	"encoding/json"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/services/projects"
)

var validate = validator.New()

type ProjectHandler struct {
	DB      *gorm.DB
	Service *projects.Service
}

func NewProjectHandler(db *gorm.DB, svc *projects.Service) *ProjectHandler {
	return &ProjectHandler{DB: db, Service: svc}
}

type CreateProjectReq struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description"`
	BudgetMin    int64    `json:"budget_min" validate:"required,gt=0"`
	BudgetMax    int64    `json:"budget_max" validate:"required,gtefield=BudgetMin"`
	DurationDays int      `json:"duration_days" validate:"required,gte=1,lte=365"`
	Skills       []string `json:"skills" validate:"required,min=1,dive,min=1"`
}

// Create posts a new open project for the authenticated client.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	var req CreateProjectReq
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

	skillsJSON, _ := json.Marshal(req.Skills)
	project := models.Project{
		ClientID:     uid,
		Title:        req.Title,
		Description:  req.Description,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
		DurationDays: req.DurationDays,
		Skills:       datatypes.JSON(skillsJSON),
		Status:       models.ProjectOpen,
		BidIDs:       datatypes.JSON([]byte("[]")),
	}
	if err := h.DB.Create(&project).Error; err != nil {
		log.Println("project create:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to create project",
		})
	}
	return created(c, project)
}

// List returns the public project board with status, skill and budget filters.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	q := h.DB.Model(&models.Project{}).Preload("Client")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if skill := c.Query("skill"); skill != "" {
		needle, _ := json.Marshal([]string{skill})
		q = q.Where("skills::jsonb @> ?::jsonb", string(needle))
	}
	if min := c.QueryInt("budget_min", 0); min > 0 {
		q = q.Where("budget_max >= ?", min)
	}
	if max := c.QueryInt("budget_max", 0); max > 0 {
		q = q.Where("budget_min <= ?", max)
	}

	var total int64
	q.Count(&total)

	var list []models.Project
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		log.Println("project list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"meta":    fiber.Map{"page": page, "limit": limit, "total": total},
	})
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var project models.Project
	if err := h.DB.Preload("Client").Preload("SelectedFreelancer").
		First(&project, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}
	return ok(c, project)
}

type UpdateProjectReq struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	BudgetMin    *int64   `json:"budget_min"`
	BudgetMax    *int64   `json:"budget_max"`
	DurationDays *int     `json:"duration_days"`
	Skills       []string `json:"skills"`
}

// Update edits project details. Blocked once the project is completed or
// cancelled.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req UpdateProjectReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}
	if project.ClientID != uid {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Only the owning client can update the project",
		})
	}
	if project.Status == models.ProjectCompleted || project.Status == models.ProjectCancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Cannot update a " + string(project.Status) + " project",
		})
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.BudgetMin != nil {
		project.BudgetMin = *req.BudgetMin
	}
	if req.BudgetMax != nil {
		project.BudgetMax = *req.BudgetMax
	}
	if req.DurationDays != nil {
		project.DurationDays = *req.DurationDays
	}
	if req.Skills != nil {
		skillsJSON, _ := json.Marshal(req.Skills)
		project.Skills = datatypes.JSON(skillsJSON)
	}
	if project.BudgetMin > project.BudgetMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "budget_min cannot exceed budget_max",
		})
	}

	if err := h.DB.Save(&project).Error; err != nil {
		log.Println("project update:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to update project",
		})
	}
	return ok(c, project)
}

// Delete removes a project. Blocked while work is in progress.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}
	if project.ClientID != uid {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Only the owning client can delete the project",
		})
	}
	if project.Status == models.ProjectInProgress {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Cannot delete a project while work is in progress",
		})
	}

	if err := h.DB.Delete(&models.Project{}, "id = ?", id).Error; err != nil {
		log.Println("project delete:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to delete project",
		})
	}
	return ok(c, fiber.Map{"deleted": true})
}

type TransitionReq struct {
	Status string `json:"status"`
}

// Transition changes the project status through the lifecycle engine.
func (h *ProjectHandler) Transition(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req TransitionReq
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "status is required",
		})
	}

	result, err := h.Service.Transition(id, uid, models.ProjectStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{"project": result.Project}
	if result.SideEffectErr != nil {
		// The transition stands; the ledger sweep will repair the ledger.
		resp["earnings_warning"] = "earnings reconciliation failed and will be retried by the sync sweep"
	}
	return ok(c, resp)
}

type ProgressReq struct {
	Progress *int `json:"progress"`
}

// Progress lets the selected freelancer report completion percentage.
func (h *ProjectHandler) Progress(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req ProgressReq
	if err := c.BodyParser(&req); err != nil || req.Progress == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "progress is required",
		})
	}

	result, err := h.Service.UpdateProgress(id, uid, *req.Progress)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"project":         result.Project,
		"earning_created": result.EarningCreated,
	})
}
