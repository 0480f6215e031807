package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/model/conversation"
	"github.com/lingualife/backend/internal/model/language"
	"github.com/lingualife/backend/internal/model/scenario"
	sessioncore "github.com/lingualife/backend/internal/session"
	"github.com/lingualife/backend/pkg/utils"
)

// Handler exposes the session controller over HTTP.
type Handler struct {
	registry   *sessioncore.Registry
	scenarios  scenario.Store
	chat       client.ChatProvider
	translator client.Translator
	speakerFor func(sessionID string) sessioncore.Speaker
	speakDelay time.Duration
}

// New creates the session handler. speakerFor may be nil when voice
// output is not configured; it is called once per created session with
// the new session's ID.
func New(registry *sessioncore.Registry, scenarios scenario.Store, chat client.ChatProvider, translator client.Translator, speakerFor func(sessionID string) sessioncore.Speaker, speakDelay time.Duration) *Handler {
	return &Handler{
		registry:   registry,
		scenarios:  scenarios,
		chat:       chat,
		translator: translator,
		speakerFor: speakerFor,
		speakDelay: speakDelay,
	}
}

// RegisterRoutes wires the session endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGet)
		sr.Get("/messages", h.handleMessages)
		sr.Post("/messages", h.handleSend)
		sr.Post("/language", h.handleSetLanguage)
		sr.Post("/translations/toggle", h.handleToggleTranslations)
		sr.Post("/voice-output/toggle", h.handleToggleVoiceOutput)
		sr.Post("/voice-input/toggle", h.handleToggleVoiceInput)
		sr.Get("/events", h.handleEvents)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Mode         string `json:"mode"`
		ScenarioID   string `json:"scenarioId"`
		LanguageCode string `json:"languageCode"`
		UID          string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := sessioncore.Options{
		SessionID:  uuid.NewString(),
		UID:        payload.UID,
		Chat:       h.chat,
		Translator: h.translator,
		SpeakDelay: h.speakDelay,
	}
	if h.speakerFor != nil {
		opts.Speaker = h.speakerFor(opts.SessionID)
	}

	switch conversation.Mode(payload.Mode) {
	case conversation.ModeScenario:
		scen, ok := h.scenarios.FindByID(payload.ScenarioID)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "scenario not found")
			return
		}
		opts.Mode = conversation.ModeScenario
		opts.Scenario = &scen
	case conversation.ModeFree:
		if _, ok := language.FindByCode(payload.LanguageCode); !ok && payload.LanguageCode != language.BaseCode {
			utils.RespondError(w, http.StatusBadRequest, "unsupported language code")
			return
		}
		opts.Mode = conversation.ModeFree
		opts.LanguageCode = payload.LanguageCode
	default:
		utils.RespondError(w, http.StatusBadRequest, "mode must be scenario or free")
		return
	}

	ctrl := sessioncore.NewController(opts)
	h.registry.Add(ctrl)

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session":  ctrl.Session(),
		"messages": ctrl.Messages(),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Session())
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": ctrl.Messages()})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, sent := ctrl.Send(r.Context(), payload.Text)
	if !sent {
		// Whitespace-only input: nothing appended, nothing requested.
		utils.RespondJSON(w, http.StatusOK, map[string]any{"sent": false})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sent":     true,
		"reply":    reply,
		"messages": ctrl.Messages(),
	})
}

func (h *Handler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if ctrl.Session().Mode != conversation.ModeFree {
		utils.RespondError(w, http.StatusBadRequest, "language switching is only available in free conversation")
		return
	}

	var payload struct {
		LanguageCode string `json:"languageCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := language.FindByCode(payload.LanguageCode); !ok && payload.LanguageCode != language.BaseCode {
		utils.RespondError(w, http.StatusBadRequest, "unsupported language code")
		return
	}

	ctrl.SetLanguage(payload.LanguageCode)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session":  ctrl.Session(),
		"messages": ctrl.Messages(),
	})
}

func (h *Handler) handleToggleTranslations(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	visible, err := ctrl.ToggleTranslations(r.Context())
	if errors.Is(err, sessioncore.ErrTranslationBusy) {
		utils.RespondError(w, http.StatusConflict, "translation pass already in flight")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"showTranslations": visible,
		"messages":         ctrl.Messages(),
	})
}

func (h *Handler) handleToggleVoiceOutput(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"voiceOutput": ctrl.ToggleVoiceOutput()})
}

func (h *Handler) handleToggleVoiceInput(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"voiceInputEnabled": ctrl.ToggleVoiceInput()})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*sessioncore.Controller, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.registry.Get(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return ctrl, true
}
