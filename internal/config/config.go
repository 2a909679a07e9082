// Package config manages persistent application settings.
//
// Settings live in a JSON file under the user's config directory
// (~/.dont-touch/config.json by default). Unknown keys in the file are
// ignored so older binaries can read newer files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/proximity"
)

// FileName is the settings file inside the config directory.
const FileName = "config.json"

// ErrInvalid is returned when a settings update fails validation.
// The previously applied settings stay in effect.
var ErrInvalid = errors.New("invalid settings")

// Settings holds every user-tunable option.
type Settings struct {
	// Detection settings.
	Sensitivity  float64 `json:"sensitivity"`
	TriggerTime  float64 `json:"trigger_time"`  // seconds
	CooldownTime float64 `json:"cooldown_time"` // seconds
	GraceWindow  float64 `json:"grace_window"`  // seconds
	FrameSkip    int     `json:"frame_skip"`

	// Alert settings.
	SoundEnabled bool `json:"sound_enabled"`
	PopupEnabled bool `json:"popup_enabled"`

	// App settings.
	AutoStartDetection bool `json:"auto_start_detection"`
	CameraID           int  `json:"camera_id"`

	// Server settings.
	ListenAddr string `json:"listen_addr"`
}

// DefaultSettings returns the out-of-the-box settings.
func DefaultSettings() Settings {
	return Settings{
		Sensitivity:        0.5,
		TriggerTime:        3.0,
		CooldownTime:       10.0,
		GraceWindow:        0.5,
		FrameSkip:          2,
		SoundEnabled:       true,
		PopupEnabled:       true,
		AutoStartDetection: false,
		CameraID:           0,
		ListenAddr:         "127.0.0.1:8713",
	}
}

// Analyzer converts the detection settings into an analyzer config.
func (s Settings) Analyzer() proximity.Config {
	return proximity.Config{
		Sensitivity:  s.Sensitivity,
		TriggerTime:  time.Duration(s.TriggerTime * float64(time.Second)),
		CooldownTime: time.Duration(s.CooldownTime * float64(time.Second)),
		GraceWindow:  time.Duration(s.GraceWindow * float64(time.Second)),
		FrameSkip:    s.FrameSkip,
	}
}

// Validate checks the settings and reports the first violation. Detection
// values share the analyzer's rules so a saved file can never carry values
// the analyzer would reject at runtime.
func (s Settings) Validate() error {
	if err := s.Analyzer().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.CameraID < 0 {
		return fmt.Errorf("%w: camera id %d must not be negative", ErrInvalid, s.CameraID)
	}
	if s.ListenAddr == "" {
		return fmt.Errorf("%w: listen address must not be empty", ErrInvalid)
	}
	return nil
}

// Manager loads, serves and persists settings. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

// DefaultDir returns the per-user config directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".dont-touch"), nil
}

// NewManager loads settings from dir, creating the directory and a default
// file when none exists. A corrupt file is replaced with defaults rather
// than failing startup.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	m := &Manager{
		path:     filepath.Join(dir, FileName),
		settings: DefaultSettings(),
	}

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := m.save(); err != nil {
			return nil, err
		}
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := DefaultSettings()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return m, m.save()
	}
	if err := loaded.Validate(); err == nil {
		m.settings = loaded
	}
	return m, nil
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Update validates s, applies it and persists it to disk. On validation
// failure the prior settings remain active and on disk.
func (m *Manager) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return m.save()
}

// Reset restores defaults and persists them.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = DefaultSettings()
	return m.save()
}

// Path returns the location of the settings file.
func (m *Manager) Path() string {
	return m.path
}

// save writes the current settings. Callers must hold the write lock
// (or be the sole owner during construction).
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
