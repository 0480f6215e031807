package scenario

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lingualife/backend/internal/client"
	scenariomodel "github.com/lingualife/backend/internal/model/scenario"
	"github.com/lingualife/backend/pkg/utils"
)

// Handler serves the scenario catalogue: built-ins plus the signed-in
// user's custom set. Custom mutations stay in memory; the persistence
// collaborator is read-only from here.
type Handler struct {
	store   scenariomodel.Store
	fetcher client.ScenarioFetcher
}

// New creates the scenario handler. fetcher may be nil when the
// persistence collaborator is not configured.
func New(store scenariomodel.Store, fetcher client.ScenarioFetcher) *Handler {
	return &Handler{store: store, fetcher: fetcher}
}

// RegisterRoutes wires the scenario endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/scenarios", h.handleList)
	r.Post("/scenarios/refresh", h.handleRefresh)
	r.Post("/scenarios", h.handleSave)
	r.Put("/scenarios/{scenarioID}", h.handleUpdate)
	r.Delete("/scenarios/{scenarioID}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"scenarios": h.store.List()})
}

// handleRefresh re-fetches the user's custom scenarios. A malformed
// collaborator response logs a warning and keeps the existing set.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.fetcher == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "scenario persistence unavailable")
		return
	}

	var payload struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UID == "" {
		utils.RespondError(w, http.StatusBadRequest, "uid is required")
		return
	}

	models, err := h.fetcher.FetchScenarios(r.Context(), payload.UID)
	if err != nil {
		if errors.Is(err, client.ErrMalformedScenarios) {
			log.Printf("[scenario] unexpected response format for uid=%s: %v", payload.UID, err)
			utils.RespondJSON(w, http.StatusOK, map[string]any{"scenarios": h.store.List()})
			return
		}
		log.Printf("[scenario] fetch failed for uid=%s: %v", payload.UID, err)
		utils.RespondError(w, http.StatusBadGateway, "failed to fetch custom scenarios")
		return
	}

	h.store.ReplaceCustom(models)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"scenarios": h.store.List()})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var scen scenariomodel.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scen); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if scen.Title == "" || scen.LanguageCode == "" {
		utils.RespondError(w, http.StatusBadRequest, "title and lcode are required")
		return
	}
	if !scen.Difficulty.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "difficulty must be Beginner, Intermediate or Advanced")
		return
	}
	if scen.ID == "" {
		scen.ID = uuid.NewString()
	}

	h.store.SaveCustom(scen)
	utils.RespondJSON(w, http.StatusCreated, scen)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "scenarioID")

	var scen scenariomodel.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scen); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if scen.Difficulty != "" && !scen.Difficulty.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "difficulty must be Beginner, Intermediate or Advanced")
		return
	}

	if !h.store.UpdateCustom(scenarioID, scen) {
		utils.RespondError(w, http.StatusNotFound, "custom scenario not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "scenarioID")
	if !h.store.DeleteCustom(scenarioID) {
		utils.RespondError(w, http.StatusNotFound, "custom scenario not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
