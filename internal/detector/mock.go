package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	frames []Frame
	index  int
	err    error
	mu     sync.Mutex
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrame sets a single frame that every Detect call returns.
func (m *MockDetector) SetFrame(frame Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = []Frame{frame}
	m.index = 0
}

// SetFrames sets a sequence of frames returned by successive Detect calls.
// After the sequence is exhausted the last frame is repeated.
func (m *MockDetector) SetFrames(frames []Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next pre-configured frame or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Frame{Timestamp: time.Now()}, m.err
	}
	if len(m.frames) == 0 {
		return Frame{Timestamp: time.Now()}, nil
	}

	next := m.frames[m.index]
	if m.index < len(m.frames)-1 {
		m.index++
	}

	if next.Timestamp.IsZero() {
		next.Timestamp = time.Now()
	}
	return next, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// UprightHeadRegion returns a preset HeadRegion for a centered, upright
// subject facing the camera.
func UprightHeadRegion() *HeadRegion {
	leftEar := Point3D{X: 0.44, Y: 0.40, Z: 0.0}
	rightEar := Point3D{X: 0.56, Y: 0.40, Z: 0.0}

	return &HeadRegion{
		Nose:          Point3D{X: 0.5, Y: 0.40, Z: 0.0},
		LeftEar:       &leftEar,
		RightEar:      &rightEar,
		LeftShoulder:  Point3D{X: 0.35, Y: 0.62, Z: 0.0},
		RightShoulder: Point3D{X: 0.65, Y: 0.62, Z: 0.0},
	}
}

// HandAt returns a preset HandLandmarks with every landmark clustered at
// the given position, so the hand center and fingertips all sit there.
func HandAt(x, y float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	for i := 0; i < NumLandmarks; i++ {
		lm.Points[i] = Point3D{X: x, Y: y, Z: 0.0}
	}
	return lm
}

// NearHandFrame returns a frame with a hand inside the head region.
func NearHandFrame(ts time.Time) Frame {
	return Frame{
		Timestamp: ts,
		Hands:     []HandLandmarks{HandAt(0.5, 0.35)},
		Head:      UprightHeadRegion(),
	}
}

// FarHandFrame returns a frame with a hand well away from the head.
func FarHandFrame(ts time.Time) Frame {
	return Frame{
		Timestamp: ts,
		Hands:     []HandLandmarks{HandAt(0.1, 0.9)},
		Head:      UprightHeadRegion(),
	}
}

// LostTrackingFrame returns a frame with no detections.
func LostTrackingFrame(ts time.Time) Frame {
	return Frame{Timestamp: ts}
}
