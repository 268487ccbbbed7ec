package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/workhive/workhive_be/internal/realtime"
	"github.com/workhive/workhive_be/internal/utils"
)

// WSHandler upgrades authenticated websocket connections and plugs them into
// the hub. Auth rides on a token query param since browsers cannot set
// headers on websocket upgrades.
type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

func (h *WSHandler) Handle(c *websocket.Conn) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		log.Println("ws: token parameter missing")
		c.Close()
		return
	}

	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		log.Println("ws: invalid token:", err)
		c.Close()
		return
	}
	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Println("ws: invalid user id in token:", err)
		c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Send:   make(chan []byte, 256),
	}

	// User-addressed delivery goes through Hub.SendToUser; clients subscribe
	// to project topics explicitly.
	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("ws: user %s disconnected", userUUID)
	}()

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("ws write error:", err)
				return
			}
		}
	}()

	// Read loop: topic subscriptions and keepalive.
	for {
		var payload struct {
			Type  string `json:"type"`
			Topic string `json:"topic"`
		}
		if err := c.ReadJSON(&payload); err != nil {
			break
		}

		switch payload.Type {
		case "subscribe":
			if validTopic(payload.Topic) {
				h.Hub.Subscribe(client, payload.Topic)
			}
		case "unsubscribe":
			if validTopic(payload.Topic) {
				h.Hub.Unsubscribe(client, payload.Topic)
			}
		case "pong":
			// keepalive, nothing to do
		}
	}
}

// validTopic restricts client-chosen subscriptions to project channels.
func validTopic(topic string) bool {
	if !strings.HasPrefix(topic, "project:") {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(topic, "project:"))
	return err == nil
}
