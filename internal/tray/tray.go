// Package tray provides the system tray interface for the detection service.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu. It surfaces the monitoring toggle, the
// current touch-free streak and a dashboard shortcut.
type Tray struct {
	onToggle    func(enabled bool)
	onDashboard func()
	onQuit      func()
	enabled     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStreak *systray.MenuItem
	menuAlerts *systray.MenuItem
}

// New creates a new Tray with monitoring off until the caller enables it.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback invoked when monitoring is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback invoked when the dashboard item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback invoked when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Don't Touch")
	systray.SetTooltip("Hand-near-head detection")

	t.mu.RLock()
	enabled := t.enabled
	t.mu.RUnlock()

	t.menuToggle = systray.AddMenuItem(toggleTitle(enabled), "Toggle monitoring")
	systray.AddSeparator()

	t.menuStreak = systray.AddMenuItem("Streak: 0 days", "Consecutive touch-free days")
	t.menuStreak.Disable()
	t.menuAlerts = systray.AddMenuItem("Today: 0 alerts", "Alerts recorded today")
	t.menuAlerts.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Don't Touch")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStreak updates the streak line in the menu.
func (t *Tray) SetStreak(days int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStreak != nil {
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		t.menuStreak.SetTitle(fmt.Sprintf("Streak: %d %s", days, unit))
	}
}

// SetTodayCount updates the daily alert count line in the menu.
func (t *Tray) SetTodayCount(count int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuAlerts != nil {
		t.menuAlerts.SetTitle(fmt.Sprintf("Today: %d alerts", count))
	}
}

// IsEnabled returns the current monitoring state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Monitoring"
	}
	return "○ Paused"
}
