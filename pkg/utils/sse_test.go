package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendSSEChunk(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSEChunk(rec, rec, map[string]string{"type": "snapshot"})

	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("expected data-only frame, got %q", body)
	}
	if !strings.Contains(body, `"type":"snapshot"`) {
		t.Errorf("payload missing from frame: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Errorf("frame not terminated by blank line: %q", body)
	}
	if !rec.Flushed {
		t.Error("frame was not flushed")
	}
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSEEvent(rec, rec, "heartbeat", map[string]string{"time": "2026-01-01T00:00:00Z"})

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: heartbeat\n") {
		t.Fatalf("expected named event frame, got %q", body)
	}
	if !strings.Contains(body, "data: {") {
		t.Errorf("event frame missing data line: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Errorf("frame not terminated by blank line: %q", body)
	}
}
