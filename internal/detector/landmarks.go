// Package detector provides hand and head landmark detection for proximity monitoring.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in normalized image coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// WristPoint returns the wrist position.
func (h *HandLandmarks) WristPoint() Point3D {
	return h.Points[Wrist]
}

// IndexFingerTip returns the index finger tip position.
func (h *HandLandmarks) IndexFingerTip() Point3D {
	return h.Points[IndexTip]
}

// MiddleFingerTip returns the middle finger tip position.
func (h *HandLandmarks) MiddleFingerTip() Point3D {
	return h.Points[MiddleTip]
}

// Center returns the approximate center of the hand, averaged over the
// wrist and the four finger base knuckles.
func (h *HandLandmarks) Center() Point3D {
	base := []int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

	var c Point3D
	for _, i := range base {
		c.X += h.Points[i].X
		c.Y += h.Points[i].Y
		c.Z += h.Points[i].Z
	}

	n := float64(len(base))
	c.X /= n
	c.Y /= n
	c.Z /= n
	return c
}

// ReferencePoints returns the hand points checked against the head region:
// the hand center, index and middle finger tips, and the wrist.
func (h *HandLandmarks) ReferencePoints() []Point3D {
	return []Point3D{
		h.Center(),
		h.IndexFingerTip(),
		h.MiddleFingerTip(),
		h.WristPoint(),
	}
}
