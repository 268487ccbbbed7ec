package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, 4),
	}
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestSendToUser(t *testing.T) {
	h := NewHub()

	userID := uuid.New()
	a := newTestClient(userID)
	b := newTestClient(uuid.New())
	h.RegisterClient(a)
	h.RegisterClient(b)

	h.SendToUser(userID, map[string]string{"event": "ping"})

	assert.JSONEq(t, `{"event":"ping"}`, string(recv(t, a)))
	assert.Empty(t, b.Send)
}

func TestPublishToTopic(t *testing.T) {
	h := NewHub()

	sub := newTestClient(uuid.New())
	other := newTestClient(uuid.New())
	h.RegisterClient(sub)
	h.RegisterClient(other)

	topic := ProjectTopic(uuid.New())
	h.Subscribe(sub, topic)

	h.Publish(topic, map[string]int{"progress": 40})

	assert.JSONEq(t, `{"progress":40}`, string(recv(t, sub)))
	assert.Empty(t, other.Send)
}

func TestSubscribeImmediatelyAfterRegister(t *testing.T) {
	h := NewHub()

	// Registration is synchronous: a subscription placed right after must
	// stick, with no settling window in between.
	c := newTestClient(uuid.New())
	topic := ProjectTopic(uuid.New())
	h.RegisterClient(c)
	h.Subscribe(c, topic)

	h.Publish(topic, "hello")
	assert.Equal(t, `"hello"`, string(recv(t, c)))
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()

	c := newTestClient(uuid.New())
	h.RegisterClient(c)

	topic := ProjectTopic(uuid.New())
	h.Subscribe(c, topic)
	h.Unsubscribe(c, topic)

	h.Publish(topic, "x")
	assert.Empty(t, c.Send)
}

func TestSubscribeUnregisteredClientIgnored(t *testing.T) {
	h := NewHub()

	c := newTestClient(uuid.New())
	topic := ProjectTopic(uuid.New())
	h.Subscribe(c, topic)

	h.Publish(topic, "x")
	assert.Empty(t, c.Send)
}

func TestUnregisterClosesSendAndDropsSubscriptions(t *testing.T) {
	h := NewHub()

	c := newTestClient(uuid.New())
	h.RegisterClient(c)

	topic := ProjectTopic(uuid.New())
	h.Subscribe(c, topic)

	h.UnregisterClient(c)

	_, open := <-c.Send
	assert.False(t, open)

	h.mu.RLock()
	_, topicAlive := h.topics[topic]
	h.mu.RUnlock()
	assert.False(t, topicAlive)
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	h := NewHub()
	h.UnregisterClient(newTestClient(uuid.New()))
}

func TestFullBufferSkipped(t *testing.T) {
	h := NewHub()

	c := &Client{ID: uuid.NewString(), UserID: uuid.New(), Send: make(chan []byte, 1)}
	h.RegisterClient(c)

	// Second send must not block even though nothing drains the channel.
	h.SendToUser(c.UserID, "first")
	done := make(chan struct{})
	go func() {
		h.SendToUser(c.UserID, "second")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendToUser blocked on a full buffer")
	}
}
