package speech

import "time"

// TTSResponse carries the synthesized audio back to the caller.
type TTSResponse struct {
	SessionID string    `json:"sessionId"`
	AudioData []byte    `json:"-"`
	Format    string    `json:"format"`
	Voice     string    `json:"voice"`
	CreatedAt time.Time `json:"createdAt"`
}
