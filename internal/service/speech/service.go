// Package speech wraps the synthesis collaborator: an HTTP TTS client,
// the language-to-voice profile table and a playback dispatcher that
// guarantees at most one utterance plays at a time.
package speech

import (
	"context"
	"sync"

	speechmodel "github.com/lingualife/backend/internal/model/speech"
)

// Synthesizer renders text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error)
}

// Playback delivers rendered audio to its sink (websocket push, local
// player in the tester, a fake in tests).
type Playback interface {
	Play(ctx context.Context, resp *speechmodel.TTSResponse) error
}

// Service exposes synthesis to handlers and the session controller.
type Service struct {
	synth Synthesizer
}

// NewService builds the speech service around a synthesis client.
func NewService(config *speechmodel.Config) *Service {
	return &Service{synth: NewTTSClient(config)}
}

// NewServiceWithSynthesizer is the seam used by tests and the tester tool.
func NewServiceWithSynthesizer(synth Synthesizer) *Service {
	return &Service{synth: synth}
}

// Synthesize renders one utterance.
func (s *Service) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	return s.synth.Synthesize(ctx, req)
}

// Speaker turns the service into the session controller's voice output:
// each Speak supersedes whatever utterance is still playing, so audio
// never overlaps within a session.
type Speaker struct {
	svc       *Service
	playback  Playback
	sessionID string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSpeaker builds a superseding speaker around the service and a sink.
// The session ID tags every synthesis request so the sink can route the
// audio back to the right session.
func NewSpeaker(svc *Service, playback Playback, sessionID string) *Speaker {
	return &Speaker{svc: svc, playback: playback, sessionID: sessionID}
}

// Speak renders and plays text, stopping any utterance already in flight
// before this one starts. It returns when playback finishes or is
// superseded.
func (s *Speaker) Speak(ctx context.Context, text, languageCode string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	playCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.cancel != nil {
			// Only clear our own registration; a superseding call may
			// already have replaced it.
			select {
			case <-playCtx.Done():
			default:
				s.cancel = nil
			}
		}
		s.mu.Unlock()
		cancel()
	}()

	resp, err := s.svc.Synthesize(playCtx, &speechmodel.TTSRequest{SessionID: s.sessionID, Text: text, Language: languageCode})
	if err != nil {
		return err
	}
	return s.playback.Play(playCtx, resp)
}

// Stop cancels the in-flight utterance, if any.
func (s *Speaker) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}
