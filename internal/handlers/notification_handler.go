package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
)

type NotificationHandler struct {
	DB        *gorm.DB
	Templates *notifications.TemplateStore
}

func NewNotificationHandler(db *gorm.DB, templates *notifications.TemplateStore) *NotificationHandler {
	return &NotificationHandler{DB: db, Templates: templates}
}

// List returns the user's notifications, newest first.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
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

	q := h.DB.Model(&models.Notification{}).Where("user_id = ?", uid)
	if c.Query("unread") == "true" {
		q = q.Where("is_read = false")
	}

	var total int64
	q.Count(&total)

	var list []models.Notification
	if err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error; err != nil {
		log.Println("notification list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch notifications",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"meta":    fiber.Map{"page": page, "limit": limit, "total": total},
	})
}

// MarkRead marks one notification (or all, with id "all") as read.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	q := h.DB.Model(&models.Notification{}).Where("user_id = ? AND is_read = false", uid)
	if raw := c.Params("id"); raw != "all" {
		id, err := paramUUID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		q = q.Where("id = ?", id)
	}

	if err := q.Updates(map[string]interface{}{
		"is_read": true,
		"read_at": time.Now(),
	}).Error; err != nil {
		log.Println("notification mark read:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to mark as read",
		})
	}
	return ok(c, fiber.Map{"read": true})
}

// ListTemplates exposes the template registry to admins.
func (h *NotificationHandler) ListTemplates(c *fiber.Ctx) error {
	events := h.Templates.Events()
	out := make([]fiber.Map, 0, len(events))
	for _, ev := range events {
		t, _ := h.Templates.Get(ev)
		out = append(out, fiber.Map{"event": ev, "title": t.Title, "body": t.Body})
	}
	return ok(c, out)
}

type UpdateTemplateReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdateTemplate is the controlled admin mutation of one template.
func (h *NotificationHandler) UpdateTemplate(c *fiber.Ctx) error {
	event := c.Params("event")

	var req UpdateTemplateReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	if err := h.Templates.Update(event, req.Title, req.Body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	t, _ := h.Templates.Get(event)
	return ok(c, fiber.Map{"event": event, "title": t.Title, "body": t.Body})
}
