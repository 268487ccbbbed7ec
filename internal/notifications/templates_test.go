package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateStoreDefaults(t *testing.T) {
	s := NewTemplateStore()
	for _, event := range s.Events() {
		tmpl, ok := s.Get(event)
		require.True(t, ok, event)
		assert.NotEmpty(t, tmpl.Title, event)
		assert.NotEmpty(t, tmpl.Body, event)
	}
	assert.Len(t, s.Events(), 12)
}

func TestTemplateStoreUpdate(t *testing.T) {
	s := NewTemplateStore()

	require.NoError(t, s.Update(EventBidReceived, "Bid in", "{freelancer} wants the job"))
	tmpl, ok := s.Get(EventBidReceived)
	require.True(t, ok)
	assert.Equal(t, "Bid in", tmpl.Title)
	assert.Equal(t, "{freelancer} wants the job", tmpl.Body)
}

func TestTemplateStoreUpdateUnknownEvent(t *testing.T) {
	s := NewTemplateStore()
	err := s.Update("bid.exploded", "t", "b")
	assert.Error(t, err)

	// The vocabulary stays fixed, nothing was inserted.
	_, ok := s.Get("bid.exploded")
	assert.False(t, ok)
	assert.Len(t, s.Events(), 12)
}

func TestTemplateStoreUpdateEmpty(t *testing.T) {
	s := NewTemplateStore()
	assert.Error(t, s.Update(EventBidReceived, "", "body"))
	assert.Error(t, s.Update(EventBidReceived, "title", "  "))

	// Rejected updates leave the default in place.
	tmpl, _ := s.Get(EventBidReceived)
	assert.Equal(t, "New bid", tmpl.Title)
}

func TestRender(t *testing.T) {
	s := NewTemplateStore()

	title, body, ok := s.Render(EventBidAccepted, map[string]interface{}{
		"project": "Landing page",
		"amount":  1500,
	})
	require.True(t, ok)
	assert.Equal(t, "Bid accepted", title)
	assert.Equal(t, `Your bid on "Landing page" was accepted for 1500`, body)
}

func TestRenderMissingKeysLeftAsIs(t *testing.T) {
	s := NewTemplateStore()
	_, body, ok := s.Render(EventProjectProgress, map[string]interface{}{"project": "X"})
	require.True(t, ok)
	assert.Contains(t, body, "{progress}")
}

func TestRenderUnknownEvent(t *testing.T) {
	s := NewTemplateStore()
	_, _, ok := s.Render("nope", nil)
	assert.False(t, ok)
}
