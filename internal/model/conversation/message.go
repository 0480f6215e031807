package conversation

import "time"

// Message is one turn in a session's log. Text, IsUser and Timestamp are
// immutable after creation; Translation transitions once from empty to a
// non-empty value and is never recomputed.
type Message struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	IsUser        bool      `json:"isUser"`
	Timestamp     time.Time `json:"timestamp"`
	Translation   string    `json:"translation,omitempty"`
	IsTranslating bool      `json:"isTranslating,omitempty"`
}
