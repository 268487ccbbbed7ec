package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
)

type MessageHandler struct {
	DB       *gorm.DB
	Notifier *notifications.Notifier
}

func NewMessageHandler(db *gorm.DB, notifier *notifications.Notifier) *MessageHandler {
	return &MessageHandler{DB: db, Notifier: notifier}
}

// canAccess reports whether the user belongs to the project's conversation:
// the owning client, the selected freelancer, or a bidder.
func (h *MessageHandler) canAccess(project *models.Project, userID uuid.UUID) bool {
	if project.ClientID == userID {
		return true
	}
	if project.SelectedFreelancerID != nil && *project.SelectedFreelancerID == userID {
		return true
	}
	var n int64
	h.DB.Model(&models.Bid{}).
		Where("project_id = ? AND freelancer_id = ?", project.ID, userID).
		Count(&n)
	return n > 0
}

type SendMessageReq struct {
	Text        string  `json:"text"`
	RecipientID *string `json:"recipient_id"`
}

// Send posts a message in the project's conversation and pushes it to the
// recipient.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req SendMessageReq
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "text is required",
		})
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}
	if !h.canAccess(&project, uid) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Access denied",
		})
	}

	// Resolve the recipient: explicit, or the other side of the project.
	var recipient uuid.UUID
	switch {
	case req.RecipientID != nil:
		recipient, err = uuid.Parse(*req.RecipientID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "invalid recipient_id",
			})
		}
	case uid == project.ClientID && project.SelectedFreelancerID != nil:
		recipient = *project.SelectedFreelancerID
	case uid != project.ClientID:
		recipient = project.ClientID
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "recipient_id is required before a freelancer is selected",
		})
	}

	msg := models.Message{
		ProjectID:   projectID,
		SenderID:    uid,
		RecipientID: recipient,
		Type:        "text",
		Text:        req.Text,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		log.Println("message send:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to send message",
		})
	}

	var sender models.User
	senderName := ""
	if err := h.DB.Select("name").First(&sender, "id = ?", uid).Error; err == nil {
		senderName = sender.Name
	}
	h.Notifier.Notify(recipient, notifications.EventMessageReceived, map[string]interface{}{
		"project":    project.Title,
		"project_id": project.ID.String(),
		"message_id": msg.ID.String(),
		"sender":     senderName,
		"text":       req.Text,
	})

	return created(c, msg)
}

// List returns the conversation between the user and the other participants
// of a project.
func (h *MessageHandler) List(c *fiber.Ctx) error {
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
	if !h.canAccess(&project, uid) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Access denied",
		})
	}

	var list []models.Message
	if err := h.DB.Preload("Sender").
		Where("project_id = ? AND (sender_id = ? OR recipient_id = ?)", projectID, uid, uid).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		log.Println("message list:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to fetch messages",
		})
	}
	return ok(c, list)
}

// MarkRead marks every message addressed to the user in this project as read.
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}
	projectID, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.DB.Model(&models.Message{}).
		Where("project_id = ? AND recipient_id = ? AND is_read = false", projectID, uid).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error; err != nil {
		log.Println("message mark read:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to mark messages as read",
		})
	}
	return ok(c, fiber.Map{"read": true})
}

// UnreadCount returns how many unread messages the user has across projects.
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	uid, err := getAuth(c)
	if err != nil {
		return fail(c, err)
	}

	var n int64
	h.DB.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = false", uid).
		Count(&n)
	return ok(c, fiber.Map{"unread": n})
}
