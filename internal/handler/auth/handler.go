package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingualife/backend/internal/service/identity"
	"github.com/lingualife/backend/pkg/utils"
)

// Handler resolves provider sign-ins into the opaque application uid and
// keeps the profile cookie in sync.
type Handler struct {
	identities *identity.Service
	cookieName string
}

// New creates the auth handler.
func New(identities *identity.Service, cookieName string) *Handler {
	return &Handler{identities: identities, cookieName: cookieName}
}

// RegisterRoutes wires the auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signin", h.handleSignIn)
	r.Post("/auth/signout", h.handleSignOut)
	r.Get("/auth/me", h.handleMe)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SubjectID string `json:"subjectId"`
		Name      string `json:"name"`
		Picture   string `json:"picture"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SubjectID == "" {
		utils.RespondError(w, http.StatusBadRequest, "subjectId is required")
		return
	}

	profile := h.identities.SignIn(payload.SubjectID, payload.Name, payload.Picture, payload.Email)
	if err := identity.WriteCookie(w, h.cookieName, profile); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to persist profile")
		return
	}

	utils.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if profile, ok := identity.ReadCookie(r, h.cookieName); ok {
		h.identities.SignOut(profile.SubjectID)
	}
	identity.ClearCookie(w, h.cookieName)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	cookieProfile, ok := identity.ReadCookie(r, h.cookieName)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	profile, ok := h.identities.Resume(cookieProfile)
	if !ok {
		identity.ClearCookie(w, h.cookieName)
		utils.RespondError(w, http.StatusUnauthorized, "profile expired")
		return
	}

	utils.RespondJSON(w, http.StatusOK, profile)
}
