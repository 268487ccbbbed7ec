package notifications

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/realtime"
)

// Notifier persists a notification row for the target user and pushes the
// event to realtime subscribers. Delivery is best-effort: errors are logged,
// never returned, and persistence happens before emission.
type Notifier struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	RDB       *redis.Client
	Templates *TemplateStore
}

func NewNotifier(db *gorm.DB, hub *realtime.Hub, rdb *redis.Client, templates *TemplateStore) *Notifier {
	return &Notifier{DB: db, Hub: hub, RDB: rdb, Templates: templates}
}

type envelope struct {
	Event string                 `json:"event"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Notify targets a single user: one persisted row plus a push to every
// connection of that user.
func (n *Notifier) Notify(userID uuid.UUID, event string, data map[string]interface{}) {
	title, body, ok := n.Templates.Render(event, data)
	if !ok {
		log.Printf("notify: no template for event %q", event)
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("notify: marshal data for %q: %v", event, err)
		raw = nil
	}

	row := models.Notification{
		UserID: userID,
		Event:  event,
		Title:  title,
		Body:   body,
		Data:   datatypes.JSON(raw),
	}
	if err := n.DB.Create(&row).Error; err != nil {
		log.Printf("notify: persist %q for user %s: %v", event, userID, err)
	}

	ev := envelope{Event: event, Title: title, Body: body, Data: data}
	n.Hub.SendToUser(userID, ev)
	if n.RDB != nil {
		if err := realtime.PublishEvent(context.Background(), n.RDB, "", userID.String(), ev); err != nil {
			log.Printf("notify: redis publish %q: %v", event, err)
		}
	}
}

// NotifyProject pushes to subscribers of the project's topic without
// persisting per-user rows.
func (n *Notifier) NotifyProject(projectID uuid.UUID, event string, data map[string]interface{}) {
	title, body, ok := n.Templates.Render(event, data)
	if !ok {
		log.Printf("notify: no template for event %q", event)
		return
	}

	ev := envelope{Event: event, Title: title, Body: body, Data: data}
	topic := realtime.ProjectTopic(projectID)
	n.Hub.Publish(topic, ev)
	if n.RDB != nil {
		if err := realtime.PublishEvent(context.Background(), n.RDB, topic, "", ev); err != nil {
			log.Printf("notify: redis publish %q: %v", event, err)
		}
	}
}
