// Package httpapi exposes the assistant over three surfaces: a JSON chat
// API, a WhatsApp webhook, and a websocket for interactive clients.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/davmoreno/lucia/internal/agent"
	"github.com/davmoreno/lucia/internal/config"
	"github.com/davmoreno/lucia/internal/memory"
	"github.com/davmoreno/lucia/internal/observability"
	"github.com/davmoreno/lucia/internal/policy"
)

// Orchestrator is the conversation surface the handlers call into.
type Orchestrator interface {
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
	Clear(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]memory.SessionSummary, error)
}

type Server struct {
	cfg          config.Config
	orchestrator Orchestrator
	window       *observability.TurnWindow
	logger       *log.Logger
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, orchestrator Orchestrator, window *observability.TurnWindow, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		window:       window,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/webhook/whatsapp", s.handleWhatsAppWebhook)

	r.Post("/v1/chat", s.handleChat)
	r.Get("/v1/chat/ws", s.handleChatWS)
	r.Get("/v1/sessions", s.handleListSessions)
	r.Delete("/v1/sessions/{id}", s.handleClearSession)
	r.Get("/v1/stats", s.handleStats)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = agent.NewSessionID()
	}

	reply, err := s.orchestrator.HandleMessage(r.Context(), req.SessionID, req.Text)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "turn_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Reply: reply})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.orchestrator.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if sessions == nil {
		sessions = []memory.SessionSummary{}
	}
	// Listing previews leave the conversation boundary; scrub PII.
	for i := range sessions {
		sessions[i].LastMessage, _ = policy.RedactPII(sessions[i].LastMessage)
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions, "count": len(sessions)})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	if err := s.orchestrator.Clear(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "clear_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session_id": id, "cleared": true})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.window.Snapshot())
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = agent.NewSessionID()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.Text) == "" {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = conn.WriteJSON(errorResponse{Error: "expected {\"text\": ...}", Code: "invalid_client_message"})
			continue
		}
		if strings.TrimSpace(req.SessionID) != "" {
			sessionID = req.SessionID
		}

		reply, err := s.orchestrator.HandleMessage(r.Context(), sessionID, req.Text)
		if err != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(chatResponse{SessionID: sessionID, Reply: reply}); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
