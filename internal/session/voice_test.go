package session_test

import (
	"context"
	"testing"

	"github.com/lingualife/backend/internal/model/conversation"
	"github.com/lingualife/backend/internal/model/scenario"
	"github.com/lingualife/backend/internal/session"
)

func TestFreeFormAutoSendOnStop(t *testing.T) {
	chat := &fakeChat{}
	ctrl := freeController("ja", chat)

	ctrl.StartListening()
	ctrl.UpdateTranscript("kon")
	ctrl.UpdateTranscript("konnichiwa")
	reply, sent := ctrl.StopListening(context.Background())

	if !sent {
		t.Fatal("stop with pending transcript should auto-send")
	}
	if reply.Text != "reply to: konnichiwa" {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
	if chat.requestCount() != 1 {
		t.Fatalf("collaborator called %d times, want 1", chat.requestCount())
	}
	if chat.requests[0].Message != "konnichiwa" {
		t.Fatalf("auto-send should use the latest partial, sent %q", chat.requests[0].Message)
	}
}

func TestStopListeningIdempotent(t *testing.T) {
	chat := &fakeChat{}
	ctrl := freeController("ja", chat)

	ctrl.StartListening()
	ctrl.UpdateTranscript("hello")
	ctrl.StopListening(context.Background())
	if _, sent := ctrl.StopListening(context.Background()); sent {
		t.Fatal("second stop must not send again")
	}
	if chat.requestCount() != 1 {
		t.Fatalf("collaborator called %d times, want exactly 1", chat.requestCount())
	}
}

func TestEmptyTranscriptDoesNotSend(t *testing.T) {
	chat := &fakeChat{}
	ctrl := freeController("ja", chat)

	ctrl.StartListening()
	if _, sent := ctrl.StopListening(context.Background()); sent {
		t.Fatal("empty recording should not send")
	}
	if chat.requestCount() != 0 {
		t.Fatalf("collaborator called %d times for empty recording", chat.requestCount())
	}
}

func TestLatePartialIgnoredAfterStop(t *testing.T) {
	chat := &fakeChat{}
	ctrl := freeController("ja", chat)

	ctrl.StartListening()
	ctrl.UpdateTranscript("hello")
	ctrl.StopListening(context.Background())

	// A recognition partial arriving after stop must neither buffer nor
	// trigger another send.
	ctrl.UpdateTranscript("late partial")
	if got := ctrl.PendingInput(); got != "" {
		t.Fatalf("late partial buffered: %q", got)
	}
	if chat.requestCount() != 1 {
		t.Fatalf("late partial triggered a send: %d calls", chat.requestCount())
	}
}

func TestScenarioModeDoesNotAutoSend(t *testing.T) {
	chat := &fakeChat{}
	seed := scenario.Seed()
	ctrl := session.NewController(session.Options{
		Mode:     conversation.ModeScenario,
		Scenario: &seed[0],
		Chat:     chat,
	})

	ctrl.StartListening()
	ctrl.UpdateTranscript("yi zhang zhuozi")
	if _, sent := ctrl.StopListening(context.Background()); sent {
		t.Fatal("scenario stop must leave submission to an explicit send")
	}
	if chat.requestCount() != 0 {
		t.Fatalf("collaborator called %d times", chat.requestCount())
	}

	// The transcript stays buffered for the explicit send.
	if got := ctrl.PendingInput(); got != "yi zhang zhuozi" {
		t.Fatalf("transcript lost after stop: %q", got)
	}
	if _, sent := ctrl.SendPending(context.Background()); !sent {
		t.Fatal("explicit send of the buffered transcript failed")
	}
}

func TestToggleVoiceInputOffStopsListening(t *testing.T) {
	ctrl := freeController("ja", &fakeChat{})

	if on := ctrl.ToggleVoiceInput(); !on {
		t.Fatal("first toggle should enable voice input")
	}
	ctrl.StartListening()
	if off := ctrl.ToggleVoiceInput(); off {
		t.Fatal("second toggle should disable voice input")
	}
	if ctrl.Listening() {
		t.Fatal("disabling voice input must stop listening")
	}
}

func TestSendClearsPendingTranscript(t *testing.T) {
	ctrl := freeController("ja", &fakeChat{})

	ctrl.StartListening()
	ctrl.UpdateTranscript("partial text")
	ctrl.Send(context.Background(), "typed instead")

	if got := ctrl.PendingInput(); got != "" {
		t.Fatalf("typed send should clear the buffered transcript, got %q", got)
	}
}
