// Package session implements the conversation core: the message log, the
// send/reply lifecycle against the chat collaborator, the batch translation
// pass and the voice input/output coordination. A Controller exclusively
// owns its session's log and configuration; handlers only call into it.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/model/conversation"
	"github.com/lingualife/backend/internal/model/language"
	"github.com/lingualife/backend/internal/model/scenario"
)

// FallbackReply is appended as the partner turn when the chat collaborator
// fails. The failure is swallowed; the session stays usable.
const FallbackReply = "Sorry, something went wrong."

var (
	ErrTranslationBusy = errors.New("translation pass already in flight")
	ErrMessageNotFound = errors.New("message not found")
)

// Speaker plays synthesized speech. Starting a new utterance supersedes
// any one still playing.
type Speaker interface {
	Speak(ctx context.Context, text, languageCode string) error
	Stop()
}

// Options configures a new Controller.
type Options struct {
	// SessionID is the pre-assigned session identifier; leave empty to
	// have the controller generate one.
	SessionID string

	Mode         conversation.Mode
	LanguageCode string
	Scenario     *scenario.Scenario
	UID          string

	Chat       client.ChatProvider
	Translator client.Translator
	Speaker    Speaker

	SpeakDelay time.Duration

	// Test seams; real callers leave them nil.
	Now   func() time.Time
	NewID func() string
}

// Controller drives one conversation session.
type Controller struct {
	mu       sync.Mutex
	session  conversation.Session
	messages []conversation.Message

	chat       client.ChatProvider
	translator client.Translator
	speaker    Speaker
	speakDelay time.Duration

	// Scenario display fields, fixed per session; the chat collaborator
	// receives the scenario title in the language slot.
	scenarioLanguage string
	scenarioTitle    string

	// epoch increments on every log reset; replies and translation merges
	// from a previous epoch are discarded instead of landing in the new log.
	epoch   uint64
	sendSeq uint64

	pendingInput string
	listening    bool
	translating  bool

	now   func() time.Time
	newID func() string

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

// NewController builds a controller and seeds the welcome message.
func NewController(opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = newID()
	}

	sess := conversation.Session{
		ID:           sessionID,
		Mode:         opts.Mode,
		LanguageCode: opts.LanguageCode,
		UID:          opts.UID,
		CreatedAt:    now().UTC(),
	}

	c := &Controller{
		session:    sess,
		chat:       opts.Chat,
		translator: opts.Translator,
		speaker:    opts.Speaker,
		speakDelay: opts.SpeakDelay,
		now:        now,
		newID:      newID,
		subs:       make(map[chan Event]struct{}),
	}

	if opts.Scenario != nil {
		c.session.ScenarioID = opts.Scenario.ID
		c.session.LanguageCode = opts.Scenario.LanguageCode
		c.scenarioLanguage = opts.Scenario.Language
		c.scenarioTitle = opts.Scenario.Title
	}

	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	return c
}

// Session returns a snapshot of the session configuration.
func (c *Controller) Session() conversation.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Messages returns a copy of the message log.
func (c *Controller) Messages() []conversation.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]conversation.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send processes one user turn: append the user message, clear the pending
// input, call the chat provider, append the reply (or the fixed fallback).
// Whitespace-only input is a no-op, not an error. The returned message is
// the partner reply; ok is false when nothing was sent.
func (c *Controller) Send(ctx context.Context, raw string) (reply conversation.Message, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return conversation.Message{}, false
	}

	c.mu.Lock()
	c.sendSeq++
	seq := c.sendSeq
	epoch := c.epoch
	userMsg := c.appendLocked(trimmed, true)
	c.pendingInput = ""
	req := c.chatRequestLocked(trimmed)
	speakLang := c.session.LanguageCode
	voiceOut := c.session.VoiceOutput
	c.mu.Unlock()

	c.emit(Event{Type: EventMessage, SessionID: c.session.ID, Message: &userMsg})

	var text string
	err := errors.New("no chat provider configured")
	if c.chat != nil {
		text, err = c.chat.Reply(ctx, req)
	}
	if err != nil {
		log.Printf("[session] send seq=%d chat request failed: %v", seq, err)
		text = FallbackReply
	}

	c.mu.Lock()
	if c.epoch != epoch {
		// The log was reset while the request was outstanding; the reply
		// belongs to a conversation that no longer exists.
		c.mu.Unlock()
		log.Printf("[session] send seq=%d reply dropped after reset", seq)
		return conversation.Message{}, false
	}
	reply = c.appendLocked(text, false)
	c.mu.Unlock()

	c.emit(Event{Type: EventMessage, SessionID: c.session.ID, Message: &reply})

	if voiceOut && err == nil && c.speaker != nil {
		c.scheduleSpeak(reply.Text, speakLang)
	}

	return reply, true
}

// SendPending submits the buffered voice transcript, if any.
func (c *Controller) SendPending(ctx context.Context) (conversation.Message, bool) {
	c.mu.Lock()
	pending := c.pendingInput
	c.mu.Unlock()
	return c.Send(ctx, pending)
}

// SetLanguage switches the free-form target language. The message log is
// discarded and re-seeded with the welcome message for the new language.
func (c *Controller) SetLanguage(code string) {
	c.mu.Lock()
	c.session.LanguageCode = code
	c.resetLocked()
	sess := c.session
	c.mu.Unlock()
	c.emit(Event{Type: EventReset, SessionID: sess.ID, Session: &sess})
}

// SetUID attaches the signed-in user's opaque identifier.
func (c *Controller) SetUID(uid string) {
	c.mu.Lock()
	c.session.UID = uid
	c.mu.Unlock()
}

// ToggleVoiceOutput flips the synthesis toggle and returns the new state.
// Turning it off stops any utterance still playing.
func (c *Controller) ToggleVoiceOutput() bool {
	c.mu.Lock()
	c.session.VoiceOutput = !c.session.VoiceOutput
	on := c.session.VoiceOutput
	c.mu.Unlock()
	if !on && c.speaker != nil {
		c.speaker.Stop()
	}
	return on
}

// SpeakMessage replays one partner message through the speaker immediately.
func (c *Controller) SpeakMessage(ctx context.Context, messageID string) error {
	c.mu.Lock()
	var text string
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			text = c.messages[i].Text
			break
		}
	}
	lang := c.session.LanguageCode
	c.mu.Unlock()

	if text == "" {
		return ErrMessageNotFound
	}
	if c.speaker == nil {
		return errors.New("speech synthesis unavailable")
	}
	return c.speaker.Speak(ctx, text, lang)
}

// resetLocked discards the log and seeds the welcome turn. English
// sessions start empty.
func (c *Controller) resetLocked() {
	c.epoch++
	c.messages = c.messages[:0]
	c.pendingInput = ""

	if c.skipWelcomeLocked() {
		return
	}
	c.appendLocked(language.WelcomeMessage(c.session.LanguageCode), false)
}

func (c *Controller) skipWelcomeLocked() bool {
	if c.session.Mode == conversation.ModeScenario {
		return strings.EqualFold(c.scenarioLanguage, "english")
	}
	return c.session.LanguageCode == language.BaseCode
}

func (c *Controller) appendLocked(text string, isUser bool) conversation.Message {
	msg := conversation.Message{
		ID:        c.newID(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: c.now().UTC(),
	}
	c.messages = append(c.messages, msg)
	return msg
}

// chatRequestLocked builds the collaborator payload for the current mode.
// Scenario sessions send the scenario id and title; free-form sessions
// resolve the partner model from the language code.
func (c *Controller) chatRequestLocked(message string) client.ChatRequest {
	req := client.ChatRequest{
		UID:     c.session.UID,
		Message: message,
	}
	if c.session.Mode == conversation.ModeScenario {
		req.ModelName = c.session.ScenarioID
		req.Language = c.scenarioTitle
		return req
	}
	req.ModelName = language.ModelForCode(c.session.LanguageCode)
	req.Language = c.session.LanguageCode
	return req
}

func (c *Controller) scheduleSpeak(text, lang string) {
	delay := c.speakDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	time.AfterFunc(delay, func() {
		if err := c.speaker.Speak(context.Background(), text, lang); err != nil {
			log.Printf("[session] speak failed: %v", err)
		}
	})
}
