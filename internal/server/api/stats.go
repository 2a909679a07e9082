// Package api provides the HTTP API handlers for the detection service.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/stats"
	"github.com/writingdeveloper/dont-touch/internal/store"
)

// defaultRecentLimit caps /recent responses when no limit is given.
const defaultRecentLimit = 20

// StatsHandler serves read-only statistics queries.
type StatsHandler struct {
	recorder *stats.Recorder
	store    *store.Store
}

// NewStatsHandler creates a StatsHandler. The store may be nil; only the
// hourly pattern endpoint needs it.
func NewStatsHandler(r *stats.Recorder, s *store.Store) *StatsHandler {
	return &StatsHandler{recorder: r, store: s}
}

// ServeHTTP routes /api/stats/{daily,weekly,streak,recent,hourly}.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/stats")
	path = strings.Trim(path, "/")

	switch path {
	case "daily":
		h.daily(w, r)
	case "weekly":
		h.weekly(w, r)
	case "streak":
		writeJSON(w, h.recorder.Streak())
	case "recent":
		h.recent(w, r)
	case "hourly":
		h.hourly(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// daily returns per-day alert counts for an inclusive date range. The range
// defaults to the last seven days.
func (h *StatsHandler) daily(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, 0, -6)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(store.DateLayout, v)
		if err != nil {
			http.Error(w, "Invalid from date", http.StatusBadRequest)
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(store.DateLayout, v)
		if err != nil {
			http.Error(w, "Invalid to date", http.StatusBadRequest)
			return
		}
		to = t
	}
	if to.Before(from) {
		http.Error(w, "Range end before start", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"from":   from.Format(store.DateLayout),
		"to":     to.Format(store.DateLayout),
		"counts": h.recorder.DailyCounts(from, to),
	})
}

// weekly returns the aggregate for the seven days starting at ?start=,
// defaulting to the week ending today.
func (h *StatsHandler) weekly(w http.ResponseWriter, r *http.Request) {
	start := time.Now().AddDate(0, 0, -6)
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(store.DateLayout, v)
		if err != nil {
			http.Error(w, "Invalid start date", http.StatusBadRequest)
			return
		}
		start = t
	}

	writeJSON(w, h.recorder.WeeklyCounts(start))
}

func (h *StatsHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	writeJSON(w, map[string]any{
		"events": h.recorder.Recent(limit),
	})
}

// hourly returns alert counts bucketed by hour of day since ?since=
// (default: last 30 days). Requires the persistent store.
func (h *StatsHandler) hourly(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Event history not available", http.StatusServiceUnavailable)
		return
	}

	since := time.Now().AddDate(0, 0, -30).Format(store.DateLayout)
	if v := r.URL.Query().Get("since"); v != "" {
		if _, err := time.Parse(store.DateLayout, v); err != nil {
			http.Error(w, "Invalid since date", http.StatusBadRequest)
			return
		}
		since = v
	}

	pattern, err := h.store.Events().HourlyPattern(since)
	if err != nil {
		http.Error(w, "Failed to query hourly pattern", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"since": since,
		"hours": pattern,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
