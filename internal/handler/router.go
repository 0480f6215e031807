package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/handler/auth"
	"github.com/lingualife/backend/internal/handler/scenario"
	"github.com/lingualife/backend/internal/handler/session"
	"github.com/lingualife/backend/internal/handler/speech"
	middlewarePkg "github.com/lingualife/backend/internal/middleware"
	scenarioModel "github.com/lingualife/backend/internal/model/scenario"
	identityService "github.com/lingualife/backend/internal/service/identity"
	speechService "github.com/lingualife/backend/internal/service/speech"
	sessionCore "github.com/lingualife/backend/internal/session"
)

// Deps collects everything the router needs wired in. Chat, Translator,
// Fetcher and SpeechSvc may be nil; the corresponding routes degrade
// instead of disappearing. The voice websocket in particular stays up
// without SpeechSvc, as transcript capture does not need synthesis.
type Deps struct {
	Registry   *sessionCore.Registry
	Scenarios  scenarioModel.Store
	Chat       client.ChatProvider
	Translator client.Translator
	Fetcher    client.ScenarioFetcher
	SpeechSvc  *speechService.Service
	Identities *identityService.Service
	CookieName string
	SpeakDelay time.Duration
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	hub := speech.NewPlaybackHub()
	var speakerFor func(sessionID string) sessionCore.Speaker
	if deps.SpeechSvc != nil {
		svc := deps.SpeechSvc
		speakerFor = func(sessionID string) sessionCore.Speaker {
			return speechService.NewSpeaker(svc, hub, sessionID)
		}
	}

	sessionHandler := session.New(deps.Registry, deps.Scenarios, deps.Chat, deps.Translator, speakerFor, deps.SpeakDelay)
	scenarioHandler := scenario.New(deps.Scenarios, deps.Fetcher)
	authHandler := auth.New(deps.Identities, deps.CookieName)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.RegisterRoutes(api)
		scenarioHandler.RegisterRoutes(api)
		authHandler.RegisterRoutes(api)

		// The websocket voice channel only needs the session registry;
		// synthesis is degraded inside the handler when no TTS key is set.
		speechHandler := speech.New(deps.SpeechSvc, deps.Registry, hub)
		speechHandler.RegisterRoutes(api)
	})

	return r
}
