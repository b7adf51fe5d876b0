package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/actionsum/quickswitch/internal/bridge"
	"github.com/actionsum/quickswitch/internal/config"
	"github.com/actionsum/quickswitch/internal/overlay"
)

// Channels answers method calls
type Channels interface {
	Handle(channel string, call bridge.Call) bridge.Result
}

// StatusProvider exposes the floating service state
type StatusProvider interface {
	IsRunning() bool
	Snapshot() overlay.State
	Toggle() (overlay.Visibility, bool)
}

type Handler struct {
	config   *config.Config
	channels Channels
	status   StatusProvider
}

func NewHandler(cfg *config.Config, channels Channels, status StatusProvider) *Handler {
	return &Handler{
		config:   cfg,
		channels: channels,
		status:   status,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/channel/", h.handleChannel)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/toggle", h.handleToggle)

	mux.HandleFunc("/health", h.handleHealth)
}

// handleChannel serves POST /channel/{channel} with a JSON bridge.Call body
func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channel := strings.Trim(strings.TrimPrefix(r.URL.Path, "/channel/"), "/")
	if channel == "" {
		http.NotFound(w, r)
		return
	}

	var call bridge.Call
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&call); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.channels.Handle(channel, call)
	if result.NotImplemented {
		respondJSONStatus(w, http.StatusNotImplemented, result)
		return
	}
	respondJSON(w, result)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"running":       false,
		"poll_interval": h.config.Watcher.PollInterval.String(),
		"lookback":      h.config.Watcher.Lookback.String(),
		"database_path": h.config.Database.Path,
	}

	if h.status != nil {
		state := h.status.Snapshot()
		status["running"] = h.status.IsRunning()
		status["overlay"] = map[string]interface{}{
			"visibility": state.Visibility.String(),
			"override":   state.Override.String(),
			"attached":   state.Attached,
			"collapsed":  state.Collapsed,
			"last_app":   state.LastApp,
			"monitored":  state.Monitored,
			"position":   state.Position,
		}
	}

	respondJSON(w, status)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.status == nil {
		http.Error(w, "Floating service unavailable", http.StatusServiceUnavailable)
		return
	}

	v, ok := h.status.Toggle()
	if !ok {
		http.Error(w, "Floating service not running", http.StatusConflict)
		return
	}
	respondJSON(w, map[string]string{"visibility": v.String()})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	respondJSONStatus(w, http.StatusOK, data)
}

func respondJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}
