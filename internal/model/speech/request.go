package speech

// TTSRequest asks the synthesis collaborator for one utterance.
type TTSRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
	Voice     string `json:"voice,omitempty"`    // explicit voice id, overrides language selection
	Language  string `json:"language,omitempty"` // application language code
}
