// Package proximity computes hand-to-head proximity and turns it into
// debounced alert decisions.
package proximity

import (
	"math"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/detector"
)

// Threshold curve bounds. Sensitivity 0 maps to ThresholdMin (hand must be
// well inside the head ellipse), sensitivity 1 to ThresholdMin+ThresholdSpan.
const (
	ThresholdMin  = 0.60
	ThresholdSpan = 1.00
)

// NoSampleDistance is the distance reported for frames without detections.
// It is a display value only; a no-sample never counts as near.
const NoSampleDistance = 1.0

// Sample is the normalized hand-to-head distance for one frame.
// Valid is false when tracking was lost and Distance carries no information.
type Sample struct {
	Distance  float64
	Valid     bool
	Timestamp time.Time
}

// NoSample returns the sentinel sample for a frame without detections.
func NoSample(ts time.Time) Sample {
	return Sample{Distance: NoSampleDistance, Valid: false, Timestamp: ts}
}

// Measure computes the proximity sample for a landmark frame. The distance
// is the minimum over all detected hands and their reference points of the
// normalized elliptical distance to the head region: 0 at the ellipse
// center, 1 on the boundary, growing continuously beyond it.
func Measure(frame detector.Frame) Sample {
	if !frame.Detected() {
		return NoSample(frame.Timestamp)
	}

	bounds := frame.Head.Bounds()

	min := math.Inf(1)
	for i := range frame.Hands {
		for _, p := range frame.Hands[i].ReferencePoints() {
			if d := ellipseDistance(p, bounds); d < min {
				min = d
			}
		}
	}

	return Sample{Distance: min, Valid: true, Timestamp: frame.Timestamp}
}

// ellipseDistance returns the normalized distance of a point from the
// ellipse center: the point is rotated into the ellipse frame and each axis
// is scaled by its radius, so the boundary maps to exactly 1.0.
func ellipseDistance(p detector.Point3D, e detector.Ellipse) float64 {
	dx := p.X - e.CenterX
	dy := p.Y - e.CenterY

	if e.Rotation != 0 {
		sin, cos := math.Sincos(-e.Rotation)
		dx, dy = dx*cos-dy*sin, dx*sin+dy*cos
	}

	nx := dx / e.RadiusX
	ny := dy / e.RadiusY
	return math.Sqrt(nx*nx + ny*ny)
}

// Threshold maps a sensitivity value in [0,1] to a near-distance threshold.
// Higher sensitivity yields a larger threshold, so alerts trigger on looser
// proximity. The mapping is pure and strictly increasing.
func Threshold(sensitivity float64) float64 {
	return ThresholdMin + ThresholdSpan*sensitivity
}
