package session

import (
	"log"
	"net/http"
	"time"

	"github.com/lingualife/backend/pkg/utils"
)

// handleEvents streams session events over SSE so the client can mirror
// the log without polling. A heartbeat keeps idle connections open.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	flusher, flushable := w.(http.Flusher)
	if !flushable {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	events, cancel := ctrl.Subscribe()
	defer cancel()

	sessionID := ctrl.Session().ID
	log.Printf("[sse] opening event stream for session=%s", sessionID)

	utils.SendSSEChunk(w, flusher, map[string]any{
		"type":     "snapshot",
		"session":  ctrl.Session(),
		"messages": ctrl.Messages(),
	})

	ticker := time.NewTicker(8 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing event stream for session=%s", sessionID)
			return
		case ev := <-events:
			utils.SendSSEChunk(w, flusher, ev)
		case <-ticker.C:
			// Named event so default onmessage handlers skip it.
			utils.SendSSEEvent(w, flusher, "heartbeat", map[string]any{
				"time": time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
}
