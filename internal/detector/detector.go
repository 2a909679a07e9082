package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Frame is a single landmark extraction result. Hands is empty and Head is
// nil when the corresponding tracking is lost; the frame itself is still a
// valid "no detection" observation.
type Frame struct {
	Timestamp time.Time       `json:"timestamp"`
	Hands     []HandLandmarks `json:"hands"`
	Head      *HeadRegion     `json:"head,omitempty"`
}

// Detected reports whether the frame carries both a hand and a head region.
func (f *Frame) Detected() bool {
	return f.Head != nil && len(f.Hands) > 0
}

// Detector defines the interface for landmark extraction implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected hand and
	// head landmarks. A frame with no detections is not an error.
	Detect(frame *gocv.Mat) (Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
