package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
)

// AdminHandler serves the analytics/reporting endpoints.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type roleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

type topEarner struct {
	FreelancerID string `json:"freelancer_id"`
	Name         string `json:"name"`
	Total        int64  `json:"total"`
}

// Stats returns the platform-wide analytics summary.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	var projectsByStatus []statusCount
	if err := h.DB.Model(&models.Project{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&projectsByStatus).Error; err != nil {
		log.Println("admin stats: projects by status:", err)
	}

	var bidsByStatus []statusCount
	if err := h.DB.Model(&models.Bid{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&bidsByStatus).Error; err != nil {
		log.Println("admin stats: bids by status:", err)
	}

	var usersByRole []roleCount
	if err := h.DB.Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&usersByRole).Error; err != nil {
		log.Println("admin stats: users by role:", err)
	}

	var avgAcceptedBid float64
	h.DB.Model(&models.Bid{}).
		Where("status = ?", models.BidAccepted).
		Select("COALESCE(AVG(amount), 0)").
		Scan(&avgAcceptedBid)

	var totalEarnings int64
	h.DB.Model(&models.Earning{}).
		Where("status = ?", models.EarningCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalEarnings)

	return ok(c, fiber.Map{
		"projects_by_status": projectsByStatus,
		"bids_by_status":     bidsByStatus,
		"users_by_role":      usersByRole,
		"avg_accepted_bid":   avgAcceptedBid,
		"total_paid_out":     totalEarnings,
	})
}

// TopEarners ranks freelancers by completed earnings.
func (h *AdminHandler) TopEarners(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var rows []topEarner
	if err := h.DB.Table("earnings").
		Select("earnings.freelancer_id, users.name, SUM(earnings.amount) as total").
		Joins("JOIN users ON users.id = earnings.freelancer_id").
		Where("earnings.status = ?", models.EarningCompleted).
		Group("earnings.freelancer_id, users.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		log.Println("admin top earners:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch top earners",
		})
	}
	return ok(c, rows)
}

// Users lists accounts with optional role filter and pagination.
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := h.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	q.Count(&total)

	var list []models.User
	if err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error; err != nil {
		log.Println("admin users:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"meta":    fiber.Map{"page": page, "limit": limit, "total": total},
	})
}

// SetUserActive toggles an account.
func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "active is required",
		})
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", *req.Active)
	if res.Error != nil {
		log.Println("admin set active:", res.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to update user",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}
	return ok(c, fiber.Map{"active": *req.Active})
}
