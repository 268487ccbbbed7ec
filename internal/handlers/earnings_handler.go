package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/services/earnings"
)

type EarningsHandler struct {
	DB      *gorm.DB
	Service *earnings.Service
}

func NewEarningsHandler(db *gorm.DB, svc *earnings.Service) *EarningsHandler {
	return &EarningsHandler{DB: db, Service: svc}
}

// List returns the authenticated freelancer's ledger, newest first.
func (h *EarningsHandler) List(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := h.DB.Model(&models.Earning{}).Preload("Project").Where("freelancer_id = ?", uid)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var list []models.Earning
	if err := q.Order("earned_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error; err != nil {
		log.Println("earnings list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch earnings",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"meta":    fiber.Map{"page": page, "limit": limit, "total": total},
	})
}

// Summary totals the ledger by status.
func (h *EarningsHandler) Summary(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	sum, err := h.Service.Summarize(uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, sum)
}

// Sync runs the backfill sweep for the authenticated freelancer, repairing
// any ledger rows missing after a failed completion side effect.
func (h *EarningsHandler) Sync(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	n, err := h.Service.SyncMissing(uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"created": n})
}
