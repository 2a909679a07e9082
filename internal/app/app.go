// Package app orchestrates the hand-near-head detection pipeline.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/writingdeveloper/dont-touch/internal/capture"
	"github.com/writingdeveloper/dont-touch/internal/detector"
	"github.com/writingdeveloper/dont-touch/internal/proximity"
	"github.com/writingdeveloper/dont-touch/internal/stats"
)

// Pipeline timing constants.
const (
	// CaptureFPS is the rate the pipeline polls the camera.
	CaptureFPS = 30
	// RolloverInterval is how often the recorder checks for a day boundary.
	RolloverInterval = time.Minute
	// AlertQueueSize buffers alerts between the pipeline and the dispatcher
	// so a slow observer never stalls frame acquisition.
	AlertQueueSize = 64
)

// AlertFunc receives every alert event, in order, on the dispatcher
// goroutine. It must not call back into App.Stop or Close.
type AlertFunc func(proximity.Event)

// Snapshot is the latest pipeline output, published once per processed
// frame for UI-side readers.
type Snapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	Running   bool             `json:"running"`
	Result    proximity.Result `json:"result"`
}

// Config holds configuration options for the application.
type Config struct {
	Recorder *stats.Recorder
	CameraID int
	Analyzer proximity.Config
}

// App is the main application that drives capture, detection and proximity
// analysis, and fans results out to observers.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	analyzer *proximity.Analyzer
	recorder *stats.Recorder

	// lifeMu serializes Start and Stop so a Start cannot slip in while a
	// Stop is still draining the loop and closing the camera. It is held
	// across the loopDone wait, so the capture loop must never take it.
	lifeMu sync.Mutex

	mu        sync.RWMutex
	enabled   bool
	stopCh    chan struct{}
	loopDone  chan struct{}
	observers map[string]AlertFunc

	// Latest-state mailbox, overwritten on every processed frame.
	snapMu   sync.RWMutex
	snapshot Snapshot

	// Preview mailbox. Written only while preview is on; the detection
	// path never depends on it.
	previewMu      sync.RWMutex
	previewEnabled bool
	previewFrame   []byte

	alertCh chan proximity.Event
	done    chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	analyzer, err := proximity.NewAnalyzer(config.Analyzer)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		analyzer:  analyzer,
		recorder:  config.Recorder,
		observers: make(map[string]AlertFunc),
		alertCh:   make(chan proximity.Event, AlertQueueSize),
		done:      make(chan struct{}),
	}

	// Try MediaPipe first, fall back to mock detection.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand and pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	go a.dispatchAlerts()
	return a, nil
}

// SetEnabled enables or disables detection. The capture loop keeps running
// but skips all processing while disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	if !enabled {
		a.analyzer.Reset()
	}
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetCamera swaps the camera implementation. Only valid before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector swaps the detector implementation. Only valid before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Analyzer returns the proximity analyzer for config swaps and state reads.
func (a *App) Analyzer() *proximity.Analyzer {
	return a.analyzer
}

// Recorder returns the statistics recorder, which may be nil.
func (a *App) Recorder() *stats.Recorder {
	return a.recorder
}

// Subscribe registers an alert observer and returns a token for Unsubscribe.
// Every observer sees every alert emitted after registration.
func (a *App) Subscribe(fn AlertFunc) string {
	token := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers[token] = fn
	return token
}

// Unsubscribe removes the observer registered under token.
func (a *App) Unsubscribe(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.observers, token)
}

// SetPreview toggles preview frame publishing. Detection is unaffected.
func (a *App) SetPreview(enabled bool) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()
	a.previewEnabled = enabled
	if !enabled {
		a.previewFrame = nil
	}
}

// PreviewEnabled reports whether preview publishing is on.
func (a *App) PreviewEnabled() bool {
	a.previewMu.RLock()
	defer a.previewMu.RUnlock()
	return a.previewEnabled
}

// PreviewFrame returns the most recent JPEG-encoded preview frame, or false
// when preview is off or no frame has been published yet.
func (a *App) PreviewFrame() ([]byte, bool) {
	a.previewMu.RLock()
	defer a.previewMu.RUnlock()
	if !a.previewEnabled || a.previewFrame == nil {
		return nil, false
	}
	return a.previewFrame, true
}

// Snapshot returns the latest published pipeline state.
func (a *App) Snapshot() Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}

// Start opens the camera and begins the capture loop. If the camera cannot
// be opened the loop never starts and the analyzer stays idle.
func (a *App) Start() error {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		a.analyzer.Reset()
		return err
	}

	a.camera.SetFPS(CaptureFPS)
	a.stopCh = make(chan struct{})
	a.loopDone = make(chan struct{})
	go a.runPipeline(a.stopCh, a.loopDone)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the capture loop and releases the camera. Safe to call from
// any goroutine and idempotent; the loop finishes its current frame before
// exiting so the analyzer is never observed mid-transition. A concurrent
// Start blocks until the teardown is fully done.
func (a *App) Stop() {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()

	a.mu.Lock()
	stopCh, loopDone := a.stopCh, a.loopDone
	a.stopCh = nil
	a.loopDone = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-loopDone

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.analyzer.Reset()
	a.publishSnapshot(Snapshot{Timestamp: time.Now(), Running: false})

	log.Println("Detection pipeline stopped")
}

// Running reports whether the capture loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Close stops the pipeline, shuts down the alert dispatcher and closes the
// detector. The App cannot be restarted afterwards.
func (a *App) Close() {
	a.Stop()
	close(a.done)

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the detector instance.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

func (a *App) publishSnapshot(s Snapshot) {
	a.snapMu.Lock()
	a.snapshot = s
	a.snapMu.Unlock()
}

// dispatchAlerts delivers queued alerts to observers, decoupled from the
// capture loop. Runs for the lifetime of the App.
func (a *App) dispatchAlerts() {
	for {
		select {
		case <-a.done:
			return
		case ev := <-a.alertCh:
			a.mu.RLock()
			fns := make([]AlertFunc, 0, len(a.observers))
			for _, fn := range a.observers {
				fns = append(fns, fn)
			}
			a.mu.RUnlock()

			// Callbacks run outside the lock so an observer may
			// subscribe or unsubscribe from within its handler.
			for _, fn := range fns {
				fn(ev)
			}
		}
	}
}
