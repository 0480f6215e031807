package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	speechmodel "github.com/lingualife/backend/internal/model/speech"
	sessioncore "github.com/lingualife/backend/internal/session"
	speechsvc "github.com/lingualife/backend/internal/service/speech"
)

// WebSocketHandler carries the voice channel for one session: transcript
// partials and the stop signal flow in, spoken replies flow out as
// base64 audio frames.
type WebSocketHandler struct {
	speechSvc *speechsvc.Service
	registry  *sessioncore.Registry
	hub       *PlaybackHub
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler creates the websocket speech handler.
func NewWebSocketHandler(speechSvc *speechsvc.Service, registry *sessioncore.Registry, hub *PlaybackHub) *WebSocketHandler {
	return &WebSocketHandler{
		speechSvc: speechSvc,
		registry:  registry,
		hub:       hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes registers the websocket endpoint.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TranscriptMessage is a recognition partial pushed by the browser.
// Only the latest partial matters; the server keeps no transcript
// history.
type TranscriptMessage struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// SpeakMessage asks the server to voice a message from the log, or raw
// text when MessageID is empty.
type SpeakMessage struct {
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
	Language  string `json:"language"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket carries the voice channel for one session.
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	ctrl, err := h.registry.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	rawConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	conn := newSafeConn(rawConn)
	defer conn.Close()

	log.Printf("[websocket] new voice connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if h.hub != nil {
		h.hub.register(sessionID, conn)
		defer h.hub.unregister(sessionID, conn)
	}

	rawConn.SetReadDeadline(time.Now().Add(60 * time.Second))
	rawConn.SetPongHandler(func(string) error {
		rawConn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.sendInfo(conn, sessionID, map[string]any{
		"type":      "connected",
		"listening": ctrl.Listening(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := rawConn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			rawConn.SetReadDeadline(time.Now().Add(60 * time.Second))

			if msg.SessionID != "" && msg.SessionID != sessionID {
				h.sendError(conn, "session mismatch")
				continue
			}

			h.handleMessage(ctx, conn, ctrl, &msg)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *safeConn, ctrl *sessioncore.Controller, msg *inboundMessage) {
	switch msg.Type {
	case "start":
		ctrl.StartListening()
		h.sendInfo(conn, ctrl.Session().ID, map[string]any{"type": "listening", "listening": true})
	case "transcript":
		h.handleTranscript(conn, ctrl, msg.Data)
	case "stop":
		h.handleStop(ctx, conn, ctrl)
	case "speak":
		h.handleSpeak(ctx, conn, ctrl, msg.Data)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleTranscript(conn *safeConn, ctrl *sessioncore.Controller, raw json.RawMessage) {
	var transcript TranscriptMessage
	if err := json.Unmarshal(raw, &transcript); err != nil {
		h.sendError(conn, "invalid transcript payload")
		return
	}

	ctrl.UpdateTranscript(transcript.Text)
	h.sendInfo(conn, ctrl.Session().ID, map[string]any{
		"type":    "transcript",
		"text":    ctrl.PendingInput(),
		"isFinal": transcript.IsFinal,
	})
}

// handleStop ends the capture window. In free conversation the captured
// transcript is sent as a user message and the partner's reply comes
// back over this connection.
func (h *WebSocketHandler) handleStop(ctx context.Context, conn *safeConn, ctrl *sessioncore.Controller) {
	sessionID := ctrl.Session().ID

	reply, sent := ctrl.StopListening(ctx)
	h.sendInfo(conn, sessionID, map[string]any{"type": "listening", "listening": false})

	if !sent {
		return
	}
	h.sendInfo(conn, sessionID, map[string]any{
		"type":    "reply",
		"message": reply,
	})
}

func (h *WebSocketHandler) handleSpeak(ctx context.Context, conn *safeConn, ctrl *sessioncore.Controller, raw json.RawMessage) {
	var speak SpeakMessage
	if err := json.Unmarshal(raw, &speak); err != nil {
		h.sendError(conn, "invalid speak payload")
		return
	}

	sessionID := ctrl.Session().ID

	if speak.MessageID != "" {
		if err := ctrl.SpeakMessage(ctx, speak.MessageID); err != nil {
			h.sendError(conn, err.Error())
		}
		return
	}

	if speak.Text == "" {
		h.sendError(conn, "speak requires messageId or text")
		return
	}

	if h.speechSvc == nil {
		h.sendError(conn, "speech synthesis unavailable")
		return
	}

	lang := speak.Language
	if lang == "" {
		lang = ctrl.Session().LanguageCode
	}

	resp, err := h.speechSvc.Synthesize(ctx, &speechmodel.TTSRequest{
		SessionID: sessionID,
		Text:      speak.Text,
		Language:  lang,
	})
	if err != nil {
		log.Printf("[websocket] TTS failed: %v", err)
		h.sendInfo(conn, sessionID, map[string]any{
			"type":  "tts",
			"error": "synthesis failed",
		})
		return
	}
	sendAudio(conn, sessionID, resp)
}

func (h *WebSocketHandler) sendInfo(conn *safeConn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *safeConn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop keeps the connection alive between transcript bursts.
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *safeConn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

func sendAudio(conn *safeConn, sessionID string, resp *speechmodel.TTSResponse) {
	if len(resp.AudioData) == 0 {
		log.Printf("[websocket] TTS returned empty audio session=%s", sessionID)
		return
	}

	log.Printf("[websocket] TTS sending audio session=%s bytes=%d format=%s", sessionID, len(resp.AudioData), resp.Format)
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data: map[string]any{
			"type":      "tts",
			"audioData": base64.StdEncoding.EncodeToString(resp.AudioData),
			"format":    resp.Format,
			"voice":     resp.Voice,
			"isFinal":   true,
		},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write audio failed: %v", err)
	}
}

// safeConn serializes writes; the ping loop, the playback hub and the
// read loop all write to the same connection.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newSafeConn(conn *websocket.Conn) *safeConn {
	return &safeConn{conn: conn}
}

func (s *safeConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *safeConn) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *safeConn) Close() error {
	return s.conn.Close()
}

// PlaybackHub routes rendered audio to the websocket connection of the
// session that asked for it. It satisfies the speech service's playback
// sink, so automatic voice output after a reply reaches the browser
// without the browser polling for it.
type PlaybackHub struct {
	mu    sync.Mutex
	conns map[string]*safeConn
}

// NewPlaybackHub creates an empty hub.
func NewPlaybackHub() *PlaybackHub {
	return &PlaybackHub{conns: make(map[string]*safeConn)}
}

func (p *PlaybackHub) register(sessionID string, conn *safeConn) {
	p.mu.Lock()
	p.conns[sessionID] = conn
	p.mu.Unlock()
}

func (p *PlaybackHub) unregister(sessionID string, conn *safeConn) {
	p.mu.Lock()
	if p.conns[sessionID] == conn {
		delete(p.conns, sessionID)
	}
	p.mu.Unlock()
}

// Play pushes one utterance to the session's connection. Audio for a
// session with no open voice channel is dropped.
func (p *PlaybackHub) Play(ctx context.Context, resp *speechmodel.TTSResponse) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.mu.Lock()
	conn := p.conns[resp.SessionID]
	p.mu.Unlock()

	if conn == nil {
		log.Printf("[websocket] no voice connection for session=%s, dropping audio", resp.SessionID)
		return nil
	}

	sendAudio(conn, resp.SessionID, resp)
	return nil
}
