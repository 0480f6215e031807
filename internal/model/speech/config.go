package speech

// Config carries the synthesis collaborator settings.
type Config struct {
	APIKey          string  `json:"apiKey"`
	BaseURL         string  `json:"baseUrl"`
	ModelID         string  `json:"modelId"`
	DefaultVoice    string  `json:"defaultVoice"`
	Stability       float32 `json:"stability"`
	SimilarityBoost float32 `json:"similarityBoost"`
	Timeout         int     `json:"timeout"` // seconds
	SpeakDelayMS    int     `json:"speakDelayMs"`
}
