// Package client holds the HTTP clients for the remote collaborators the
// conversation core depends on: chat completion, translation and custom
// scenario persistence. Each collaborator is a stateless JSON-over-POST
// endpoint; every call is independent and carries the opaque uid when one
// is known.
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

// ChatRequest is one turn sent to the chat collaborator.
type ChatRequest struct {
	UID       string // empty means anonymous, serialized as null
	ModelName string
	Message   string
	Language  string
}

// ChatProvider produces the partner's reply for one user turn.
type ChatProvider interface {
	Reply(ctx context.Context, req ChatRequest) (string, error)
}

// HTTPChatClient talks to POST {base}/chat.
type HTTPChatClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPChatClient builds a chat client with the given request timeout.
func NewHTTPChatClient(baseURL string, timeout time.Duration) *HTTPChatClient {
	return &HTTPChatClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatPayload struct {
	UID       *string `json:"uid"`
	ModelName string  `json:"model_name"`
	Message   string  `json:"message"`
	Language  string  `json:"language"`
}

// Reply posts the turn and returns the collaborator's response text. When
// the payload decodes but lacks the response field, the raw body is
// returned as the display text rather than failing the turn.
func (c *HTTPChatClient) Reply(ctx context.Context, req ChatRequest) (string, error) {
	payload := chatPayload{
		ModelName: req.ModelName,
		Message:   req.Message,
		Language:  req.Language,
	}
	if req.UID != "" {
		uid := req.UID
		payload.UID = &uid
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat server error: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Response == "" {
		return string(raw), nil
	}
	return parsed.Response, nil
}
