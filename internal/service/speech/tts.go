package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	speechmodel "github.com/lingualife/backend/internal/model/speech"
)

// TTSClient talks to the ElevenLabs-style synthesis endpoint:
// POST {base}/v1/text-to-speech/{voiceID} with the api key header,
// returning raw audio bytes.
type TTSClient struct {
	config     *speechmodel.Config
	httpClient *http.Client
}

// NewTTSClient builds a synthesis client from the collaborator config.
func NewTTSClient(config *speechmodel.Config) *TTSClient {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TTSClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ttsPayload struct {
	Text          string           `json:"text"`
	ModelID       string           `json:"model_id"`
	VoiceSettings ttsVoiceSettings `json:"voice_settings"`
}

type ttsVoiceSettings struct {
	Stability       float32 `json:"stability"`
	SimilarityBoost float32 `json:"similarity_boost"`
}

// Synthesize renders one utterance. Voice selection walks the candidate
// list (explicit voice, configured default, language profile) and returns
// the first successful render.
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("TTS text is empty")
	}
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("TTS api key not configured")
	}

	voices := resolveVoiceCandidates(req.Voice, c.config.DefaultVoice, req.Language)
	var lastErr error

	for idx, voice := range voices {
		audio, err := c.synthesizeWithVoice(ctx, req.Text, voice)
		if err == nil {
			if idx > 0 {
				log.Printf("[tts] fallback voice %s succeeded", voice)
			}
			return &speechmodel.TTSResponse{
				SessionID: req.SessionID,
				AudioData: audio,
				Format:    "mp3",
				Voice:     voice,
				CreatedAt: time.Now().UTC(),
			}, nil
		}
		lastErr = err
		log.Printf("[tts] voice %s failed: %v", voice, err)
	}

	return nil, fmt.Errorf("all voices failed: %w", lastErr)
}

func (c *TTSClient) synthesizeWithVoice(ctx context.Context, text, voice string) ([]byte, error) {
	payload := ttsPayload{
		Text:    text,
		ModelID: c.config.ModelID,
		VoiceSettings: ttsVoiceSettings{
			Stability:       c.config.Stability,
			SimilarityBoost: c.config.SimilarityBoost,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal TTS request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", strings.TrimRight(c.config.BaseURL, "/"), voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build TTS request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("TTS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("TTS request failed with status %d: %s", resp.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read TTS audio: %w", err)
	}
	return audio, nil
}
