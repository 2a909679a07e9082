package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewManager_CreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("Expected config file to be created: %v", err)
	}
	if got := m.Settings(); got != DefaultSettings() {
		t.Errorf("Expected default settings, got %+v", got)
	}
}

func TestManager_UpdatePersists(t *testing.T) {
	dir := t.TempDir()

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	s := m.Settings()
	s.Sensitivity = 0.8
	s.TriggerTime = 1.5
	s.SoundEnabled = false
	if err := m.Update(s); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// A fresh manager over the same directory sees the saved values.
	m2, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager reload failed: %v", err)
	}
	got := m2.Settings()
	if got.Sensitivity != 0.8 {
		t.Errorf("Expected sensitivity 0.8 after reload, got %v", got.Sensitivity)
	}
	if got.TriggerTime != 1.5 {
		t.Errorf("Expected trigger time 1.5 after reload, got %v", got.TriggerTime)
	}
	if got.SoundEnabled {
		t.Error("Expected sound to stay disabled after reload")
	}
}

func TestManager_UpdateRejectsInvalid(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	bad := m.Settings()
	bad.Sensitivity = 1.5
	if err := m.Update(bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}

	if got := m.Settings(); got.Sensitivity != DefaultSettings().Sensitivity {
		t.Errorf("Expected prior sensitivity to survive rejected update, got %v", got.Sensitivity)
	}
}

func TestNewManager_CorruptFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if got := m.Settings(); got != DefaultSettings() {
		t.Errorf("Expected defaults after corrupt file, got %+v", got)
	}
}

func TestNewManager_IgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	body := `{"sensitivity": 0.25, "some_future_option": true}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	got := m.Settings()
	if got.Sensitivity != 0.25 {
		t.Errorf("Expected sensitivity 0.25, got %v", got.Sensitivity)
	}
	// Absent keys keep their defaults.
	if got.FrameSkip != DefaultSettings().FrameSkip {
		t.Errorf("Expected default frame skip, got %d", got.FrameSkip)
	}
}

func TestSettings_Analyzer(t *testing.T) {
	s := DefaultSettings()
	s.TriggerTime = 2.5
	s.GraceWindow = 0.25

	cfg := s.Analyzer()
	if cfg.TriggerTime != 2500*time.Millisecond {
		t.Errorf("Expected trigger time 2.5s, got %v", cfg.TriggerTime)
	}
	if cfg.GraceWindow != 250*time.Millisecond {
		t.Errorf("Expected grace window 250ms, got %v", cfg.GraceWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default-derived config to validate: %v", err)
	}
}

func TestManager_Reset(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	s := m.Settings()
	s.FrameSkip = 5
	if err := m.Update(s); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := m.Settings(); got != DefaultSettings() {
		t.Errorf("Expected defaults after reset, got %+v", got)
	}
}
