package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/config"
	"github.com/lingualife/backend/internal/handler"
	"github.com/lingualife/backend/internal/model/language"
	scenarioModel "github.com/lingualife/backend/internal/model/scenario"
	speechModel "github.com/lingualife/backend/internal/model/speech"
	"github.com/lingualife/backend/internal/service/ai"
	"github.com/lingualife/backend/internal/service/identity"
	"github.com/lingualife/backend/internal/service/speech"
	"github.com/lingualife/backend/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := language.ValidateWelcomeTable(); err != nil {
		log.Fatalf("welcome table invalid: %v", err)
	}

	scenarioStore := scenarioModel.NewMemoryStore(scenarioModel.Seed())
	registry := session.NewRegistry()

	collabTimeout := time.Duration(cfg.Collab.Timeout) * time.Second

	// Chat provider: the remote collaborator when configured, the
	// in-process Ark model otherwise.
	var chatProvider client.ChatProvider
	switch {
	case cfg.Collab.ChatEnabled():
		chatProvider = client.NewHTTPChatClient(cfg.Collab.BaseURL, collabTimeout)
		log.Printf("chat collaborator configured at %s", cfg.Collab.BaseURL)
	case cfg.AI.Enabled():
		aiSvc, err := ai.NewService(ctx, scenarioStore, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without a chat provider - replies will use the fallback text")
		} else {
			chatProvider = aiSvc
			log.Println("AI chat provider initialized successfully")
		}
	default:
		log.Println("no chat collaborator or Ark credentials configured - replies will use the fallback text")
	}

	var translator client.Translator
	var fetcher client.ScenarioFetcher
	if cfg.Collab.BaseURL != "" {
		translator = client.NewHTTPTranslator(cfg.Collab.BaseURL, collabTimeout)
		fetcher = client.NewHTTPScenarioClient(cfg.Collab.BaseURL, collabTimeout)
	} else {
		log.Println("API_BASE_URL not set - translation and scenario refresh disabled")
	}

	var speechService *speech.Service
	if cfg.Speech.Enabled {
		speechService = speech.NewService(&speechModel.Config{
			APIKey:          cfg.Speech.APIKey,
			BaseURL:         cfg.Speech.BaseURL,
			ModelID:         cfg.Speech.ModelID,
			DefaultVoice:    cfg.Speech.DefaultVoice,
			Stability:       cfg.Speech.Stability,
			SimilarityBoost: cfg.Speech.SimilarityBoost,
			Timeout:         cfg.Speech.Timeout,
			SpeakDelayMS:    cfg.Speech.SpeakDelayMS,
		})
		log.Println("Speech service initialized successfully")
	} else {
		log.Println("TTS_API_KEY not set - voice output disabled")
	}

	identities := identity.NewService(time.Duration(cfg.Auth.ProfileTTLDays) * 24 * time.Hour)

	router := handler.NewRouter(handler.Deps{
		Registry:   registry,
		Scenarios:  scenarioStore,
		Chat:       chatProvider,
		Translator: translator,
		Fetcher:    fetcher,
		SpeechSvc:  speechService,
		Identities: identities,
		CookieName: cfg.Auth.CookieName,
		SpeakDelay: time.Duration(cfg.Speech.SpeakDelayMS) * time.Millisecond,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("LinguaLife backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
