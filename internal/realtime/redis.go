package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventChannel is the Redis pub/sub channel every API instance listens on, so
// hub events reach clients connected to other instances.
const EventChannel = "workhive:events"

// instanceID tags events published by this process. The bridge drops messages
// carrying its own id: the publisher already delivered them to its local hub,
// so replaying them would double-deliver to every client on this instance.
var instanceID = uuid.NewString()

func NewRedis(addr, password string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	log.Printf("redis client created (addr: %s)", addr)
	return rdb
}

type wireEvent struct {
	Origin string          `json:"origin"`
	Topic  string          `json:"topic,omitempty"`
	UserID string          `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// PublishEvent pushes an event onto the shared Redis channel. Topic and user id
// are alternative addressing modes; exactly one should be set.
func PublishEvent(ctx context.Context, rdb *redis.Client, topic string, userID string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	b, err := json.Marshal(wireEvent{Origin: instanceID, Topic: topic, UserID: userID, Data: raw})
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, EventChannel, b).Err()
}

// dispatchWire decodes one channel payload and replays it into the hub,
// dropping events this instance published itself.
func dispatchWire(hub *Hub, payload []byte) {
	var ev wireEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("bridge: bad event payload: %v", err)
		return
	}
	if ev.Origin == instanceID {
		return
	}
	switch {
	case ev.UserID != "":
		uid, err := uuid.Parse(ev.UserID)
		if err != nil {
			log.Printf("bridge: bad user id %q: %v", ev.UserID, err)
			return
		}
		hub.SendToUser(uid, ev.Data)
	case ev.Topic != "":
		hub.Publish(ev.Topic, ev.Data)
	}
}

// RunBridge consumes the Redis channel and replays events from other
// instances into the local hub. Blocks; run in a goroutine.
func RunBridge(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.Subscribe(ctx, EventChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		dispatchWire(hub, []byte(msg.Payload))
	}
}
