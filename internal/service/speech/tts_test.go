package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	speechmodel "github.com/lingualife/backend/internal/model/speech"
)

func testConfig(baseURL string) *speechmodel.Config {
	return &speechmodel.Config{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		ModelID:         "eleven_multilingual_v2",
		Stability:       0.5,
		SimilarityBoost: 0.5,
		Timeout:         5,
	}
}

func TestSynthesizeRequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client := NewTTSClient(testConfig(srv.URL))
	resp, err := client.Synthesize(context.Background(), &speechmodel.TTSRequest{
		SessionID: "s1",
		Text:      "こんにちは",
		Language:  "ja",
	})
	if err != nil {
		t.Fatalf("Synthesize err: %v", err)
	}

	if gotPath != "/v1/text-to-speech/Mv8AjrYZCBkdsmDHNwcB" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header missing: %q", gotKey)
	}
	if gotPayload["model_id"] != "eleven_multilingual_v2" {
		t.Fatalf("model_id not forwarded: %v", gotPayload["model_id"])
	}
	settings, _ := gotPayload["voice_settings"].(map[string]any)
	if settings["stability"] != 0.5 || settings["similarity_boost"] != 0.5 {
		t.Fatalf("voice settings not forwarded: %v", settings)
	}

	if string(resp.AudioData) != "mp3-bytes" {
		t.Fatalf("audio bytes mangled: %q", resp.AudioData)
	}
	if resp.SessionID != "s1" || resp.Format != "mp3" {
		t.Fatalf("unexpected response meta: %+v", resp)
	}
}

func TestSynthesizeVoiceFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "brokenVoice") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Write([]byte("audio"))
	}))
	defer srv.Close()

	client := NewTTSClient(testConfig(srv.URL))
	resp, err := client.Synthesize(context.Background(), &speechmodel.TTSRequest{
		Text:     "hello",
		Voice:    "brokenVoice",
		Language: "zh",
	})
	if err != nil {
		t.Fatalf("Synthesize err: %v", err)
	}
	if resp.Voice != "bhJUNIXWQQ94l8eI2VUf" {
		t.Fatalf("expected fallback to the language voice, got %q", resp.Voice)
	}
}

func TestSynthesizeAllVoicesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	client := NewTTSClient(testConfig(srv.URL))
	_, err := client.Synthesize(context.Background(), &speechmodel.TTSRequest{Text: "hello", Language: "ja"})
	if err == nil {
		t.Fatal("expected error when every voice fails")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry the last status: %v", err)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	client := NewTTSClient(testConfig("http://unused"))
	if _, err := client.Synthesize(context.Background(), &speechmodel.TTSRequest{Text: "   "}); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSynthesizeMissingKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.APIKey = ""
	client := NewTTSClient(cfg)
	if _, err := client.Synthesize(context.Background(), &speechmodel.TTSRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error when the api key is unset")
	}
}

type recordingPlayback struct {
	mu     sync.Mutex
	played []string
}

func (r *recordingPlayback) Play(ctx context.Context, resp *speechmodel.TTSResponse) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r.mu.Lock()
	r.played = append(r.played, string(resp.AudioData))
	r.mu.Unlock()
	return nil
}

type stubSynth struct {
	block chan struct{}
}

func (s *stubSynth) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &speechmodel.TTSResponse{SessionID: req.SessionID, AudioData: []byte(req.Text)}, nil
}

func TestSpeakerPlaysThroughSink(t *testing.T) {
	sink := &recordingPlayback{}
	speaker := NewSpeaker(NewServiceWithSynthesizer(&stubSynth{}), sink, "s1")

	if err := speaker.Speak(context.Background(), "hello", "ja"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.played) != 1 || sink.played[0] != "hello" {
		t.Fatalf("unexpected playback log: %v", sink.played)
	}
}

func TestSpeakerSupersedes(t *testing.T) {
	sink := &recordingPlayback{}
	block := make(chan struct{})
	speaker := NewSpeaker(NewServiceWithSynthesizer(&stubSynth{block: block}), sink, "s1")

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- speaker.Speak(context.Background(), "first", "ja")
	}()

	// The second utterance cancels the first mid-synthesis.
	go func() {
		speaker.Speak(context.Background(), "second", "ja")
	}()

	close(block)
	if err := <-firstDone; err == nil {
		sink.mu.Lock()
		n := len(sink.played)
		sink.mu.Unlock()
		if n > 1 {
			t.Fatalf("both utterances played: %v", sink.played)
		}
	}
}

func TestSpeakerStop(t *testing.T) {
	sink := &recordingPlayback{}
	block := make(chan struct{})
	speaker := NewSpeaker(NewServiceWithSynthesizer(&stubSynth{block: block}), sink, "s1")

	done := make(chan error, 1)
	go func() {
		done <- speaker.Speak(context.Background(), "hello", "ja")
	}()

	// Let the synthesis get underway, then stop it.
	deadline := time.Now().Add(time.Second)
	for {
		speaker.mu.Lock()
		started := speaker.cancel != nil
		speaker.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("utterance never started")
		}
		time.Sleep(time.Millisecond)
	}
	speaker.Stop()
	close(block)

	if err := <-done; err == nil {
		t.Fatal("stopped utterance should return the cancellation error")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.played) != 0 {
		t.Fatalf("stopped utterance reached the sink: %v", sink.played)
	}
}
