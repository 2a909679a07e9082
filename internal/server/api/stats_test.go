package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/proximity"
	"github.com/writingdeveloper/dont-touch/internal/stats"
	"github.com/writingdeveloper/dont-touch/internal/store"
)

// newTestRecorder creates an in-memory recorder preloaded with n events
// stamped at the given time.
func newTestRecorder(t *testing.T, n int, ts time.Time) *stats.Recorder {
	t.Helper()

	rec, err := stats.NewRecorder(nil, ts)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	for i := 0; i < n; i++ {
		rec.Record(proximity.Event{
			ID:              "event-" + string(rune('a'+i)),
			Timestamp:       ts,
			Duration:        3 * time.Second,
			ClosestDistance: 0.4,
		})
	}
	return rec
}

func TestStatsHandler_Daily(t *testing.T) {
	now := time.Now()
	handler := NewStatsHandler(newTestRecorder(t, 3, now), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/daily", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		From   string         `json:"from"`
		To     string         `json:"to"`
		Counts map[string]int `json:"counts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	today := now.Format(store.DateLayout)
	if response.Counts[today] != 3 {
		t.Errorf("expected 3 alerts today, got %d", response.Counts[today])
	}
	if len(response.Counts) != 7 {
		t.Errorf("expected a 7-day default range, got %d days", len(response.Counts))
	}
}

func TestStatsHandler_DailyRejectsBadRange(t *testing.T) {
	handler := NewStatsHandler(newTestRecorder(t, 0, time.Now()), nil)

	cases := []struct {
		name string
		url  string
	}{
		{"malformed from", "/api/stats/daily?from=yesterday"},
		{"malformed to", "/api/stats/daily?to=2025-13-99"},
		{"end before start", "/api/stats/daily?from=2025-06-10&to=2025-06-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestStatsHandler_Streak(t *testing.T) {
	handler := NewStatsHandler(newTestRecorder(t, 1, time.Now()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/streak", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var info stats.StreakInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.LastTouchDate != time.Now().Format(store.DateLayout) {
		t.Errorf("expected last touch today, got %q", info.LastTouchDate)
	}
}

func TestStatsHandler_Recent(t *testing.T) {
	handler := NewStatsHandler(newTestRecorder(t, 5, time.Now()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/recent?limit=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Events []proximity.Event `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(response.Events))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats/recent?limit=0", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for zero limit, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestStatsHandler_Weekly(t *testing.T) {
	now := time.Now()
	handler := NewStatsHandler(newTestRecorder(t, 2, now), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/weekly", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var weekly stats.WeeklyStats
	if err := json.NewDecoder(rec.Body).Decode(&weekly); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if weekly.TotalTouches != 2 {
		t.Errorf("expected 2 touches this week, got %d", weekly.TotalTouches)
	}
}

func TestStatsHandler_HourlyRequiresStore(t *testing.T) {
	handler := NewStatsHandler(newTestRecorder(t, 0, time.Now()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/hourly", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d without a store, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestStatsHandler_HourlyWithStore(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	if err := s.Events().Insert("ev-1", ts, 3.0, 0.4); err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}

	rec2, err := stats.NewRecorder(s, ts)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	handler := NewStatsHandler(rec2, s)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/hourly?since=2025-01-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Hours map[string]int `json:"hours"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Hours["14"] != 1 {
		t.Errorf("expected 1 event in hour 14, got %d", response.Hours["14"])
	}
}

func TestStatsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStatsHandler(newTestRecorder(t, 0, time.Now()), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/stats/streak", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStatsHandler_UnknownPath(t *testing.T) {
	handler := NewStatsHandler(newTestRecorder(t, 0, time.Now()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/bogus", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
