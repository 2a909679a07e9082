package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/writingdeveloper/dont-touch/internal/proximity"
)

func TestAPI_ControlWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Fresh service reports idle.
	resp, err := client.Get(ts.URL + "/api/control/status")
	if err != nil {
		t.Fatalf("GET /api/control/status error = %v", err)
	}
	var status struct {
		Running bool   `json:"running"`
		State   string `json:"state"`
	}
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()
	if status.Running || status.State != "idle" {
		t.Fatalf("fresh status = %+v, want stopped and idle", status)
	}

	// 2. Start detection.
	resp, err = client.Post(ts.URL+"/api/control/start", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/control/start error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST start status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()
	if !status.Running {
		t.Fatal("expected running after start")
	}

	// 3. Statistics are reachable while running.
	resp, _ = client.Get(ts.URL + "/api/stats/streak")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/stats/streak status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 4. Stop detection.
	resp, err = client.Post(ts.URL+"/api/control/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/control/stop error = %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()
	if status.Running {
		t.Fatal("expected stopped after stop")
	}
}

func TestAPI_LiveSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	srv := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("websocket read error = %v", err)
	}

	var payload struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if payload.Type != "snapshot" {
		t.Errorf("message type = %q, want snapshot", payload.Type)
	}
}

func TestLiveHandler_ConcurrentBroadcasts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _ := newTestApp(t)
	h := NewLiveHandler(a)
	ts := httptest.NewServer(h)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// Alerts and snapshots are pushed from separate goroutines onto the
	// same connection. Hammer the alert path while the snapshot ticker
	// runs; every frame must arrive intact.
	const writers, perWriter = 4, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				h.broadcastAlert(proximity.Event{
					ID:        fmt.Sprintf("ev-%d-%d", w, i),
					Timestamp: time.Now(),
					Duration:  time.Second,
				})
			}
		}(w)
	}

	alerts := 0
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for alerts < writers*perWriter {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("websocket read error after %d alerts: %v", alerts, err)
		}
		var payload struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &payload); err != nil {
			t.Fatalf("malformed frame: %v", err)
		}
		if payload.Type == "alert" {
			alerts++
		}
	}
	wg.Wait()
}
