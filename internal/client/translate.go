package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Translator converts a message text into the user's base language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// HTTPTranslator talks to POST {base}/translate.
type HTTPTranslator struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPTranslator builds a translation client with the given timeout.
func NewHTTPTranslator(baseURL string, timeout time.Duration) *HTTPTranslator {
	return &HTTPTranslator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Translate posts the text and returns the translated string. A missing
// translatedText field is an error in its own right; non-2xx failures
// surface the status and body in the error text.
func (c *HTTPTranslator) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("translation failed: %d %s - %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(raw))
	}

	var parsed struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if parsed.TranslatedText == "" {
		return "", fmt.Errorf("translation API did not return a translatedText field")
	}
	return parsed.TranslatedText, nil
}
