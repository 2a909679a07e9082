package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/writingdeveloper/dont-touch/internal/app"
	"github.com/writingdeveloper/dont-touch/internal/config"
)

// ControlHandler exposes detection lifecycle and settings endpoints.
type ControlHandler struct {
	app      *app.App
	settings *config.Manager
}

// NewControlHandler creates a ControlHandler for the given app and settings
// manager.
func NewControlHandler(a *app.App, m *config.Manager) *ControlHandler {
	return &ControlHandler{app: a, settings: m}
}

// ServeHTTP routes /api/control/{status,start,stop,preview,config}.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/control")
	path = strings.Trim(path, "/")

	switch path {
	case "status":
		h.status(w, r)
	case "start":
		h.start(w, r)
	case "stop":
		h.stop(w, r)
	case "preview":
		h.preview(w, r)
	case "config":
		h.config(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

type statusResponse struct {
	Running bool   `json:"running"`
	Enabled bool   `json:"enabled"`
	Preview bool   `json:"preview"`
	State   string `json:"state"`
}

func (h *ControlHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeStatus(w)
}

func (h *ControlHandler) writeStatus(w http.ResponseWriter) {
	writeJSON(w, statusResponse{
		Running: h.app.Running(),
		Enabled: h.app.IsEnabled(),
		Preview: h.app.PreviewEnabled(),
		State:   h.app.Analyzer().State().String(),
	})
}

func (h *ControlHandler) start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.app.Start(); err != nil {
		http.Error(w, "Failed to start detection: "+err.Error(), http.StatusConflict)
		return
	}
	h.app.SetEnabled(true)
	h.writeStatus(w)
}

func (h *ControlHandler) stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.app.SetEnabled(false)
	h.app.Stop()
	h.writeStatus(w)
}

type previewRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *ControlHandler) preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.app.SetPreview(req.Enabled)
	h.writeStatus(w)
}

// config serves the current settings on GET and applies new settings on
// PUT. A rejected update leaves both the stored settings and the running
// analyzer untouched.
func (h *ControlHandler) config(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.settings.Settings())

	case http.MethodPut:
		var s config.Settings
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := h.settings.Update(s); err != nil {
			if errors.Is(err, config.ErrInvalid) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}

		// The analyzer accepts anything the settings validator passed.
		if err := h.app.Analyzer().SetConfig(s.Analyzer()); err != nil {
			http.Error(w, "Failed to apply settings", http.StatusInternalServerError)
			return
		}

		writeJSON(w, h.settings.Settings())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
