// Package server provides the HTTP API and WebSocket event broadcast.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	apperrors "github.com/screen-translator/platform/internal/errors"
	"github.com/screen-translator/platform/internal/history"
	"github.com/screen-translator/platform/internal/loop"
	"github.com/screen-translator/platform/internal/trace"
)

// EngineSelector is the engine-switching surface of an OCR or
// translation manager.
type EngineSelector interface {
	Available() []string
	CurrentEngine() string
	SetEngine(id string) error
	NextEngine() (string, error)
}

// HistoryStore is the read/clear surface of the history store.
type HistoryStore interface {
	All() ([]history.Entry, error)
	Clear() error
}

// LoopController is the lifecycle surface of the capture loop.
type LoopController interface {
	Start(ctx context.Context) error
	Stop()
	Status() loop.Status
	Events() <-chan loop.Event
}

// Server handles the REST API and pushes loop events to WebSocket
// clients.
type Server struct {
	ocrEngines       EngineSelector
	translateEngines EngineSelector
	hist             HistoryStore
	loop             LoopController
	baseCtx          context.Context

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// New creates a server and starts the event broadcaster. baseCtx bounds
// the loop's lifetime when started over the API.
func New(baseCtx context.Context, ocrEngines, translateEngines EngineSelector, hist HistoryStore, lc LoopController) *Server {
	s := &Server{
		ocrEngines:       ocrEngines,
		translateEngines: translateEngines,
		hist:             hist,
		loop:             lc,
		baseCtx:          baseCtx,
		conns:            make(map[*websocket.Conn]struct{}),
	}
	go s.broadcastEvents()
	return s
}

// Handler returns the routed HTTP handler with CORS and trace
// middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(trace.Middleware)

	r.Get("/api/history", s.handleHistoryList)
	r.Delete("/api/history", s.handleHistoryClear)
	r.Get("/api/engines", s.handleEnginesList)
	r.Post("/api/engines/ocr", s.selectEngineHandler(s.ocrEngines))
	r.Post("/api/engines/translation", s.selectEngineHandler(s.translateEngines))
	r.Get("/api/loop", s.handleLoopStatus)
	r.Post("/api/loop/start", s.handleLoopStart)
	r.Post("/api/loop/stop", s.handleLoopStop)
	r.Get("/ws", s.handleWebSocket)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"code":  apperrors.CodeOf(err),
	})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.hist.All()
	if err != nil {
		trace.Logger(r.Context()).Error("history list failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.hist.Clear(); err != nil {
		trace.Logger(r.Context()).Error("history clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type engineSet struct {
	Current   string   `json:"current"`
	Available []string `json:"available"`
}

func (s *Server) handleEnginesList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]engineSet{
		"ocr": {
			Current:   s.ocrEngines.CurrentEngine(),
			Available: s.ocrEngines.Available(),
		},
		"translation": {
			Current:   s.translateEngines.CurrentEngine(),
			Available: s.translateEngines.Available(),
		},
	})
}

type selectEngineRequest struct {
	ID    string `json:"id"`
	Cycle bool   `json:"cycle"`
}

func (s *Server) selectEngineHandler(sel EngineSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectEngineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest,
				apperrors.Wrap(err, apperrors.InvalidInput, "decode request"))
			return
		}

		switch {
		case req.Cycle:
			if _, err := sel.NextEngine(); err != nil {
				writeError(w, http.StatusConflict, err)
				return
			}
		case req.ID != "":
			if err := sel.SetEngine(req.ID); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		default:
			writeError(w, http.StatusBadRequest,
				apperrors.New(apperrors.InvalidInput, "request needs id or cycle"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"current": sel.CurrentEngine()})
	}
}

func (s *Server) handleLoopStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": s.loop.Status()})
}

func (s *Server) handleLoopStart(w http.ResponseWriter, r *http.Request) {
	// The loop outlives the request; its lifetime is bound to the server.
	if err := s.loop.Start(s.baseCtx); err != nil {
		trace.Logger(r.Context()).Warn("loop start rejected", "error", err)
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": s.loop.Status()})
}

func (s *Server) handleLoopStop(w http.ResponseWriter, _ *http.Request) {
	s.loop.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"status": s.loop.Status()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		trace.Logger(r.Context()).Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	log := trace.Logger(r.Context())
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// Clients only listen; the read pump exists to notice disconnects.
	ctx := r.Context()
	for {
		var msg json.RawMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (s *Server) broadcastEvents() {
	for evt := range s.loop.Events() {
		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn, e loop.Event) {
				_ = wsjson.Write(context.Background(), c, e)
			}(conn, evt)
		}
		s.mu.RUnlock()
	}
}
