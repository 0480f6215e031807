package speech

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingualife/backend/internal/analysis/langdetect"
	speechmodel "github.com/lingualife/backend/internal/model/speech"
	sessioncore "github.com/lingualife/backend/internal/session"
	speechsvc "github.com/lingualife/backend/internal/service/speech"
	"github.com/lingualife/backend/pkg/utils"
)

// Handler exposes synthesis over HTTP and the per-session websocket.
// A nil speech service leaves the websocket transcript channel up and
// rejects only synthesis requests.
type Handler struct {
	speechSvc *speechsvc.Service
	registry  *sessioncore.Registry
	hub       *PlaybackHub
}

// New creates the speech handler.
func New(speechSvc *speechsvc.Service, registry *sessioncore.Registry, hub *PlaybackHub) *Handler {
	return &Handler{speechSvc: speechSvc, registry: registry, hub: hub}
}

// RegisterRoutes wires the speech endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(sr chi.Router) {
		sr.Post("/synthesize", h.handleSynthesize)
		sr.Get("/health", h.handleHealth)

		if h.registry != nil {
			ws := NewWebSocketHandler(h.speechSvc, h.registry, h.hub)
			ws.RegisterWebSocketRoutes(sr)
		} else {
			sr.Get("/ws/{sessionID}", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusNotImplemented, "speech websocket not available")
			})
		}
	})
}

// handleSynthesize renders one utterance and returns it base64-encoded.
// A request without a language code falls back to script detection for
// voice selection.
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if h.speechSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis unavailable")
		return
	}

	var payload struct {
		Text      string `json:"text"`
		Language  string `json:"language"`
		Voice     string `json:"voice"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	lang := payload.Language
	if lang == "" {
		lang = langdetect.Detect(payload.Text).Code
	}

	resp, err := h.speechSvc.Synthesize(r.Context(), &speechmodel.TTSRequest{
		SessionID: payload.SessionID,
		Text:      payload.Text,
		Voice:     payload.Voice,
		Language:  lang,
	})
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "synthesis failed: "+err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"audio":  base64.StdEncoding.EncodeToString(resp.AudioData),
		"format": resp.Format,
		"voice":  resp.Voice,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
