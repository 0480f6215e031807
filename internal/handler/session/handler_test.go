package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/model/scenario"
	sessioncore "github.com/lingualife/backend/internal/session"
)

type stubChat struct{}

func (stubChat) Reply(_ context.Context, req client.ChatRequest) (string, error) {
	return "echo: " + req.Message, nil
}

func setupRouter() (*chi.Mux, *sessioncore.Registry) {
	registry := sessioncore.NewRegistry()
	store := scenario.NewMemoryStore(scenario.Seed())
	handler := New(registry, store, stubChat{}, nil, nil, 0)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, registry
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler, body map[string]string) string {
	t.Helper()
	resp := postJSON(t, r, "/session", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var parsed struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if parsed.Session.ID == "" {
		t.Fatal("create response missing session id")
	}
	return parsed.Session.ID
}

func TestCreateFreeSession(t *testing.T) {
	r, registry := setupRouter()

	id := createSession(t, r, map[string]string{"mode": "free", "languageCode": "ja"})

	ctrl, err := registry.Get(id)
	if err != nil {
		t.Fatalf("session not registered: %v", err)
	}
	if len(ctrl.Messages()) != 1 {
		t.Fatalf("expected seeded welcome, got %d messages", len(ctrl.Messages()))
	}
}

func TestCreateScenarioSession(t *testing.T) {
	r, _ := setupRouter()
	createSession(t, r, map[string]string{"mode": "scenario", "scenarioId": "japanese_barista"})
}

func TestCreateRejectsUnknownScenario(t *testing.T) {
	r, _ := setupRouter()
	resp := postJSON(t, r, "/session", map[string]string{"mode": "scenario", "scenarioId": "nope"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateRejectsUnknownLanguage(t *testing.T) {
	r, _ := setupRouter()
	resp := postJSON(t, r, "/session", map[string]string{"mode": "free", "languageCode": "xx"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateRejectsUnknownMode(t *testing.T) {
	r, _ := setupRouter()
	resp := postJSON(t, r, "/session", map[string]string{"mode": "group"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendMessage(t *testing.T) {
	r, _ := setupRouter()
	id := createSession(t, r, map[string]string{"mode": "free", "languageCode": "ja"})

	resp := postJSON(t, r, "/session/"+id+"/messages", map[string]string{"text": "hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var parsed struct {
		Sent  bool `json:"sent"`
		Reply struct {
			Text string `json:"text"`
		} `json:"reply"`
	}
	json.Unmarshal(resp.Body.Bytes(), &parsed)
	if !parsed.Sent || parsed.Reply.Text != "echo: hello" {
		t.Fatalf("unexpected send response: %s", resp.Body.String())
	}
}

func TestSendBlankReportsNotSent(t *testing.T) {
	r, _ := setupRouter()
	id := createSession(t, r, map[string]string{"mode": "free", "languageCode": "ja"})

	resp := postJSON(t, r, "/session/"+id+"/messages", map[string]string{"text": "   "})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var parsed struct {
		Sent bool `json:"sent"`
	}
	json.Unmarshal(resp.Body.Bytes(), &parsed)
	if parsed.Sent {
		t.Fatal("blank input reported as sent")
	}
}

func TestSendUnknownSession(t *testing.T) {
	r, _ := setupRouter()
	resp := postJSON(t, r, "/session/missing/messages", map[string]string{"text": "hello"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSetLanguage(t *testing.T) {
	r, registry := setupRouter()
	id := createSession(t, r, map[string]string{"mode": "free", "languageCode": "ja"})

	resp := postJSON(t, r, "/session/"+id+"/language", map[string]string{"languageCode": "zh"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	ctrl, _ := registry.Get(id)
	if ctrl.Session().LanguageCode != "zh" {
		t.Fatalf("language not switched: %q", ctrl.Session().LanguageCode)
	}
}

func TestSetLanguageRejectedInScenarioMode(t *testing.T) {
	r, _ := setupRouter()
	id := createSession(t, r, map[string]string{"mode": "scenario", "scenarioId": "japanese_barista"})

	resp := postJSON(t, r, "/session/"+id+"/language", map[string]string{"languageCode": "zh"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestToggleTranslationsEnglish(t *testing.T) {
	r, _ := setupRouter()
	id := createSession(t, r, map[string]string{"mode": "free", "languageCode": "en"})

	// English needs no translator; the pass short-circuits.
	resp := postJSON(t, r, "/session/"+id+"/translations/toggle", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var parsed struct {
		ShowTranslations bool `json:"showTranslations"`
	}
	json.Unmarshal(resp.Body.Bytes(), &parsed)
	if !parsed.ShowTranslations {
		t.Fatal("translations should be visible after toggle-on")
	}
}

func TestToggleVoiceOutput(t *testing.T) {
	r, _ := setupRouter()
	id := createSession(t, r, map[string]string{"mode": "free", "languageCode": "ja"})

	resp := postJSON(t, r, "/session/"+id+"/voice-output/toggle", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var parsed map[string]bool
	json.Unmarshal(resp.Body.Bytes(), &parsed)
	if !parsed["voiceOutput"] {
		t.Fatal("first toggle should enable voice output")
	}
}
