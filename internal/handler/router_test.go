package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	scenarioModel "github.com/lingualife/backend/internal/model/scenario"
	identityService "github.com/lingualife/backend/internal/service/identity"
	sessionCore "github.com/lingualife/backend/internal/session"
)

// Voice input only needs the session registry; a deployment without a
// TTS key must still expose the transcript websocket and degrade only
// synthesis.
func TestVoiceChannelWithoutSpeechService(t *testing.T) {
	r := NewRouter(Deps{
		Registry:   sessionCore.NewRegistry(),
		Scenarios:  scenarioModel.NewMemoryStore(scenarioModel.Seed()),
		Identities: identityService.NewService(30 * 24 * time.Hour),
		CookieName: "userProfile",
	})

	body, _ := json.Marshal(map[string]string{"mode": "free", "languageCode": "ja"})
	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("session create failed: %d %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}

	// Not a websocket handshake, so the upgrader rejects it with 400;
	// what matters is the route exists at all.
	wsReq := httptest.NewRequest(http.MethodGet, "/api/speech/ws/"+created.Session.ID, nil)
	wsResp := httptest.NewRecorder()
	r.ServeHTTP(wsResp, wsReq)
	if wsResp.Code == http.StatusNotFound || wsResp.Code == http.StatusNotImplemented {
		t.Fatalf("voice websocket unreachable without TTS configured: %d", wsResp.Code)
	}

	synthReq := httptest.NewRequest(http.MethodPost, "/api/speech/synthesize", strings.NewReader(`{"text":"hello"}`))
	synthReq.Header.Set("Content-Type", "application/json")
	synthResp := httptest.NewRecorder()
	r.ServeHTTP(synthResp, synthReq)
	if synthResp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from synthesize without TTS, got %d", synthResp.Code)
	}
}
