package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/services/bids"
)

type BidHandler struct {
	DB      *gorm.DB
	Service *bids.Service
}

func NewBidHandler(db *gorm.DB, svc *bids.Service) *BidHandler {
	return &BidHandler{DB: db, Service: svc}
}

type SubmitBidReq struct {
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	Proposal     string `json:"proposal" validate:"required,min=50,max=1000"`
	DeliveryDays int    `json:"delivery_days" validate:"required,gte=1,lte=365"`
}

// Submit places a bid on an open project.
func (h *BidHandler) Submit(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req SubmitBidReq
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

	bid, err := h.Service.Submit(projectID, uid, req.Amount, req.Proposal, req.DeliveryDays)
	if err != nil {
		return fail(c, err)
	}
	return created(c, bid)
}

// ListForProject returns the bids on a project. The owning client sees all,
// a freelancer sees only their own.
func (h *BidHandler) ListForProject(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}

	q := h.DB.Preload("Freelancer").Where("project_id = ?", projectID)
	if project.ClientID != uid {
		q = q.Where("freelancer_id = ?", uid)
	}

	var list []models.Bid
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		log.Println("bid list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch bids",
		})
	}
	return ok(c, list)
}

// ListMine returns the authenticated freelancer's bids across projects.
func (h *BidHandler) ListMine(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	q := h.DB.Preload("Project").Where("freelancer_id = ?", uid)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var list []models.Bid
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		log.Println("bid list mine:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch bids",
		})
	}
	return ok(c, list)
}

type BidStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus lets the client accept or reject a bid.
func (h *BidHandler) UpdateStatus(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	bidID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req BidStatusReq
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "status is required",
		})
	}

	bid, err := h.Service.UpdateStatus(bidID, uid, models.BidStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, bid)
}

type CounterReq struct {
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Message string `json:"message"`
}

// Counter records the client's counter-offer on a pending bid.
func (h *BidHandler) Counter(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	bidID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req CounterReq
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

	bid, err := h.Service.Counter(bidID, uid, req.Amount, req.Message)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, bid)
}

// AcceptCounter lets the freelancer take the countered amount.
func (h *BidHandler) AcceptCounter(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	bidID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	bid, err := h.Service.AcceptCounter(bidID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, bid)
}

// Withdraw removes the freelancer's own pending bid.
func (h *BidHandler) Withdraw(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	bidID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Service.Withdraw(bidID, uid); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"withdrawn": true})
}
