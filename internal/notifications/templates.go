package notifications

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Event names used across the API.
const (
	EventBidReceived          = "bid.received"
	EventBidCountered         = "bid.countered"
	EventCounterAccepted      = "bid.counter_accepted"
	EventBidAccepted          = "bid.accepted"
	EventBidRejected          = "bid.rejected"
	EventProjectStatus        = "project.status_changed"
	EventProjectProgress      = "project.progress_updated"
	EventEarningCreated       = "earning.created"
	EventEarningCompleted     = "earning.completed"
	EventReviewReceived       = "review.received"
	EventVerificationReviewed = "verification.reviewed"
	EventMessageReceived      = "message.received"
)

type Template struct {
	Title string
	Body  string
}

// TemplateStore owns the notification templates. Reads and updates go through
// the store; nothing else holds a reference to the underlying map.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: defaultTemplates()}
}

func defaultTemplates() map[string]Template {
	return map[string]Template{
		EventBidReceived:          {"New bid", "{freelancer} placed a bid of {amount} on \"{project}\""},
		EventBidCountered:         {"Counter-offer", "The client countered your bid on \"{project}\" with {amount}"},
		EventCounterAccepted:      {"Counter-offer accepted", "{freelancer} accepted your counter-offer on \"{project}\""},
		EventBidAccepted:          {"Bid accepted", "Your bid on \"{project}\" was accepted for {amount}"},
		EventBidRejected:          {"Bid rejected", "Your bid on \"{project}\" was rejected"},
		EventProjectStatus:        {"Project update", "\"{project}\" is now {status}"},
		EventProjectProgress:      {"Progress update", "\"{project}\" is at {progress}%"},
		EventEarningCreated:       {"Earning recorded", "An earning of {amount} for \"{project}\" is pending"},
		EventEarningCompleted:     {"Earning completed", "Your earning of {amount} for \"{project}\" is completed"},
		EventReviewReceived:       {"New review", "You received a {rating}-star review on \"{project}\""},
		EventVerificationReviewed: {"Verification update", "Your identity verification was {status}"},
		EventMessageReceived:      {"New message", "{sender}: {text}"},
	}
}

// Get returns the template for an event.
func (s *TemplateStore) Get(event string) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[event]
	return t, ok
}

// Update replaces the template of a known event. Unknown events are rejected
// so the event vocabulary stays fixed.
func (s *TemplateStore) Update(event, title, body string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return fmt.Errorf("template title and body are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[event]; !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}
	s.templates[event] = Template{Title: title, Body: body}
	return nil
}

// Events lists the known event names, sorted.
func (s *TemplateStore) Events() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.templates))
	for k := range s.templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Render fills {placeholder} tokens in the event's template. Missing keys are
// left as-is.
func (s *TemplateStore) Render(event string, data map[string]interface{}) (title, body string, ok bool) {
	t, ok := s.Get(event)
	if !ok {
		return "", "", false
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(t.Title), r.Replace(t.Body), true
}
