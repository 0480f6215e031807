package session

import "github.com/lingualife/backend/internal/model/conversation"

// EventType tags what a session event describes.
type EventType string

const (
	EventMessage      EventType = "message"
	EventReset        EventType = "reset"
	EventTranslations EventType = "translations"
)

// Event is pushed to subscribers whenever the log or toggles change, so
// the SSE stream can mirror the session without polling.
type Event struct {
	Type      EventType             `json:"type"`
	SessionID string                `json:"sessionId"`
	Message   *conversation.Message `json:"message,omitempty"`
	Session   *conversation.Session `json:"session,omitempty"`
}

// Subscribe registers an event channel. The returned func removes it.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		delete(c.subs, ch)
		c.subMu.Unlock()
	}
	return ch, cancel
}

// emit fans the event out without blocking; a slow subscriber drops
// events rather than stalling the controller.
func (c *Controller) emit(ev Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
