package session

import (
	"context"

	"github.com/lingualife/backend/internal/model/conversation"
)

// Voice input coordination. Recognition itself is a browser capability;
// the controller only tracks the listening state and the pending
// transcript fed to it over the websocket.

// ToggleVoiceInput flips the scenario-mode voice input toggle. Turning it
// off also stops listening, matching the frontend control.
func (c *Controller) ToggleVoiceInput() bool {
	c.mu.Lock()
	c.session.VoiceInputEnabled = !c.session.VoiceInputEnabled
	on := c.session.VoiceInputEnabled
	if !on {
		c.listening = false
	}
	c.mu.Unlock()
	return on
}

// StartListening arms transcript capture for one recording.
func (c *Controller) StartListening() {
	c.mu.Lock()
	c.listening = true
	c.mu.Unlock()
}

// UpdateTranscript records the latest recognition partial. The newest
// partial replaces the pending input wholesale (last-partial-wins); it is
// ignored once listening has stopped, so late async partials can neither
// change what was sent nor trigger another send.
func (c *Controller) UpdateTranscript(text string) {
	c.mu.Lock()
	if c.listening {
		c.pendingInput = text
	}
	c.mu.Unlock()
}

// StopListening ends the recording. In the free-form variant a non-empty
// pending transcript is submitted exactly once per recording; the
// scenario variant leaves submission to an explicit send. The returned
// message is the partner reply when an auto-send happened.
func (c *Controller) StopListening(ctx context.Context) (conversation.Message, bool) {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return conversation.Message{}, false
	}
	c.listening = false
	autoSend := c.session.Mode == conversation.ModeFree && c.pendingInput != ""
	c.mu.Unlock()

	if !autoSend {
		return conversation.Message{}, false
	}
	return c.SendPending(ctx)
}

// Listening reports whether a recording is active.
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// PendingInput returns the buffered transcript.
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingInput
}
