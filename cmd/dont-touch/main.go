package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/app"
	"github.com/writingdeveloper/dont-touch/internal/config"
	"github.com/writingdeveloper/dont-touch/internal/proximity"
	"github.com/writingdeveloper/dont-touch/internal/server"
	"github.com/writingdeveloper/dont-touch/internal/stats"
	"github.com/writingdeveloper/dont-touch/internal/store"
	"github.com/writingdeveloper/dont-touch/internal/tray"
)

func main() {
	fmt.Println("Don't Touch - Hand-Near-Head Detection")

	dataDir, err := config.DefaultDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}

	settings, err := config.NewManager(dataDir)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	dbPath := filepath.Join(dataDir, "dont-touch.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Drop event history older than a year.
	cutoff := time.Now().AddDate(-1, 0, 0).Format(store.DateLayout)
	if pruned, err := st.Events().Prune(cutoff); err != nil {
		log.Printf("Failed to prune old events: %v", err)
	} else if pruned > 0 {
		log.Printf("Pruned %d events older than %s", pruned, cutoff)
	}

	recorder, err := stats.NewRecorder(st, time.Now())
	if err != nil {
		log.Fatalf("Failed to load statistics: %v", err)
	}

	s := settings.Settings()
	application, err := app.New(app.Config{
		Recorder: recorder,
		CameraID: s.CameraID,
		Analyzer: s.Analyzer(),
	})
	if err != nil {
		log.Fatalf("Failed to create detection pipeline: %v", err)
	}
	defer application.Close()

	// Keep the tray's daily figures fresh as alerts come in.
	t := tray.New(s.AutoStartDetection)
	application.Subscribe(func(ev proximity.Event) {
		today := time.Now()
		counts := recorder.DailyCounts(today, today)
		t.SetTodayCount(counts[today.Format(store.DateLayout)])
		t.SetStreak(recorder.CurrentStreak())
	})

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       application,
		Store:     st,
		Settings:  settings,
	})

	addr := s.ListenAddr
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if s.AutoStartDetection {
		if err := application.Start(); err != nil {
			log.Printf("Failed to start detection: %v", err)
		} else {
			application.SetEnabled(true)
		}
	}

	t.OnToggle(func(enabled bool) {
		if enabled {
			if err := application.Start(); err != nil {
				log.Printf("Failed to start detection: %v", err)
				return
			}
			application.SetEnabled(true)
			return
		}
		application.SetEnabled(false)
		application.Stop()
	})
	t.OnDashboard(func() {
		openBrowser("http://" + addr)
	})
	t.OnQuit(func() {
		application.Stop()
	})

	// Blocks until quit is selected from the menu.
	t.Run()
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".dont-touch", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
