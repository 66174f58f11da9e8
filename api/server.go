package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/match3/game/config"
	"github.com/wricardo/match3/game/engine"
	"github.com/wricardo/match3/game/service"
	"github.com/wricardo/match3/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil, in which case /ws is not served.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Each path is registered once so a wrong method on a known path is a 405,
	// whatever order the routes were added in.
	api.Handle("/board", methods{
		"GET":  s.handleGetBoard,
		"POST": s.handleNewGame,
	})
	api.Handle("/board/tile", methods{"GET": s.handleGetTile})
	api.Handle("/board/can-move", methods{"POST": s.handleCanMove})
	api.Handle("/board/move", methods{"POST": s.handleMove})
	api.Handle("/history", methods{"GET": s.handleGetHistory})

	// Presets
	api.Handle("/presets", methods{"GET": s.handleListPresets})
	api.Handle("/presets/{name}", methods{"GET": s.handleGetPreset})

	api.Handle("/health", methods{"GET": s.handleHealth})

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

// methods dispatches a single path by HTTP method
type methods map[string]http.HandlerFunc

func (m methods) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := m[r.Method]; ok {
		h(w, r)
		return
	}

	allowed := make([]string, 0, len(m))
	for method := range m {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusRecorder keeps the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades need the raw writer
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and config errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoActiveGame):
		return http.StatusConflict
	case errors.Is(err, config.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidPreset), errors.Is(err, service.ErrOffBoard):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// swapRequest is the body of can-move and move
type swapRequest struct {
	From *engine.Position `json:"from"`
	To   *engine.Position `json:"to"`
}

func decodeSwap(r *http.Request) (engine.Position, engine.Position, error) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return engine.Position{}, engine.Position{}, fmt.Errorf("invalid request body: %v", err)
	}
	if req.From == nil || req.To == nil {
		return engine.Position{}, engine.Position{}, errors.New("both 'from' and 'to' are required")
	}
	return *req.From, *req.To, nil
}

// Board Handlers

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.State(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset string `json:"preset,omitempty"`
	}

	// An empty body starts the default preset
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	info, err := s.service.NewGame(r.Context(), strings.TrimSpace(req.Preset))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetTile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	row, err := strconv.Atoi(query.Get("row"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "row must be an integer")
		return
	}
	col, err := strconv.Atoi(query.Get("col"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "col must be an integer")
		return
	}

	tile, err := s.service.Tile(r.Context(), engine.Position{Row: row, Col: col})
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, tile)
}

func (s *Server) handleCanMove(w http.ResponseWriter, r *http.Request) {
	from, to, err := decodeSwap(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := s.service.CanMove(r.Context(), from, to)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":  from,
		"to":    to,
		"legal": ok,
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	from, to, err := decodeSwap(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Move(r.Context(), from, to)
	if err != nil {
		if result != nil {
			// Partial result, Error is already set
			respondJSON(w, statusFor(err), result)
			return
		}
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.History(r.Context(), opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if presets == nil {
		presets = []*config.PresetInfo{}
	}

	respondJSON(w, http.StatusOK, presets)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	preset, err := s.service.LoadPreset(r.Context(), name)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, preset)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
