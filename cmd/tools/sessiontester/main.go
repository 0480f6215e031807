// Command sessiontester drives one conversation session against the live
// collaborators from the command line, without the HTTP layer in between.
// Handy for checking chat, translation and synthesis credentials.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/config"
	"github.com/lingualife/backend/internal/model/conversation"
	scenarioModel "github.com/lingualife/backend/internal/model/scenario"
	speechModel "github.com/lingualife/backend/internal/model/speech"
	"github.com/lingualife/backend/internal/service/speech"
	"github.com/lingualife/backend/internal/session"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	mode := flag.String("mode", "free", "session mode: free or scenario")
	scenarioID := flag.String("scenario", "", "scenario ID for scenario mode")
	lang := flag.String("lang", "ja", "target language code for free mode")
	uid := flag.String("uid", "", "user identifier to attach to chat requests")
	translate := flag.Bool("translate", false, "toggle translations on after sending")
	speak := flag.Bool("speak", false, "synthesize the last reply")
	outPath := flag.String("out", "", "output path for synthesized audio (default reply.mp3)")
	timeout := flag.Duration("timeout", 60*time.Second, "overall timeout")

	flag.Parse()

	messages := flag.Args()
	if len(messages) == 0 {
		log.Fatal("pass at least one message as a positional argument")
	}

	if !cfg.Collab.ChatEnabled() {
		log.Fatal("API_BASE_URL is not set; the tester needs the live collaborators")
	}

	collabTimeout := time.Duration(cfg.Collab.Timeout) * time.Second
	opts := session.Options{
		UID:        *uid,
		Chat:       client.NewHTTPChatClient(cfg.Collab.BaseURL, collabTimeout),
		Translator: client.NewHTTPTranslator(cfg.Collab.BaseURL, collabTimeout),
	}

	switch conversation.Mode(*mode) {
	case conversation.ModeScenario:
		store := scenarioModel.NewMemoryStore(scenarioModel.Seed())
		scen, ok := store.FindByID(*scenarioID)
		if !ok {
			log.Fatalf("unknown scenario %q", *scenarioID)
		}
		opts.Mode = conversation.ModeScenario
		opts.Scenario = &scen
	case conversation.ModeFree:
		opts.Mode = conversation.ModeFree
		opts.LanguageCode = *lang
	default:
		log.Fatalf("unsupported mode %q", *mode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ctrl := session.NewController(opts)
	dumpLog(ctrl)

	var lastReply conversation.Message
	for _, msg := range messages {
		reply, ok := ctrl.Send(ctx, msg)
		if !ok {
			log.Printf("[WARN] message %q was not sent", msg)
			continue
		}
		lastReply = reply
		fmt.Printf("\n>>> %s\n<<< %s\n", msg, reply.Text)
	}

	if *translate {
		if _, err := ctrl.ToggleTranslations(ctx); err != nil {
			log.Fatalf("translation pass failed: %v", err)
		}
		fmt.Println("\n--- with translations ---")
		dumpLog(ctrl)
	}

	if *speak {
		if lastReply.Text == "" {
			log.Fatal("nothing to speak; no reply was received")
		}
		synthesizeReply(ctx, cfg, ctrl, lastReply, *outPath)
	}
}

func dumpLog(ctrl *session.Controller) {
	for _, m := range ctrl.Messages() {
		speaker := "partner"
		if m.IsUser {
			speaker = "user"
		}
		line := fmt.Sprintf("[%s] %s", speaker, m.Text)
		if m.Translation != "" {
			line += " / " + m.Translation
		}
		fmt.Println(line)
	}
}

func synthesizeReply(ctx context.Context, cfg *config.Config, ctrl *session.Controller, reply conversation.Message, outPath string) {
	if !cfg.Speech.Enabled {
		log.Fatal("TTS_API_KEY is not set; cannot synthesize")
	}

	svc := speech.NewService(&speechModel.Config{
		APIKey:          cfg.Speech.APIKey,
		BaseURL:         cfg.Speech.BaseURL,
		ModelID:         cfg.Speech.ModelID,
		DefaultVoice:    cfg.Speech.DefaultVoice,
		Stability:       cfg.Speech.Stability,
		SimilarityBoost: cfg.Speech.SimilarityBoost,
		Timeout:         cfg.Speech.Timeout,
	})

	resp, err := svc.Synthesize(ctx, &speechModel.TTSRequest{
		SessionID: ctrl.Session().ID,
		Text:      reply.Text,
		Language:  ctrl.Session().LanguageCode,
	})
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}

	if outPath == "" {
		format := resp.Format
		if format == "" {
			format = "mp3"
		}
		outPath = "reply." + format
	}
	if err := os.WriteFile(outPath, resp.AudioData, 0o644); err != nil {
		log.Fatalf("failed to write audio: %v", err)
	}

	meta, _ := json.Marshal(map[string]any{"voice": resp.Voice, "format": resp.Format, "bytes": len(resp.AudioData)})
	log.Printf("wrote %s %s", outPath, meta)
}
