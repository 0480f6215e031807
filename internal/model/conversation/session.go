package conversation

import "time"

// Mode distinguishes the two conversation views.
type Mode string

const (
	// ModeScenario pins the session to one built-in or custom scenario.
	ModeScenario Mode = "scenario"
	// ModeFree lets the user switch the target language mid-session.
	ModeFree Mode = "free"
)

// Session captures the configuration of one conversation.
type Session struct {
	ID           string    `json:"id"`
	Mode         Mode      `json:"mode"`
	LanguageCode string    `json:"languageCode"`
	ScenarioID   string    `json:"scenarioId,omitempty"`
	UID          string    `json:"uid,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`

	ShowTranslations  bool `json:"showTranslations"`
	VoiceOutput       bool `json:"voiceOutput"`
	VoiceInputEnabled bool `json:"voiceInputEnabled,omitempty"`
}
