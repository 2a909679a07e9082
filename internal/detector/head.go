package detector

import "math"

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	PoseNose          = 0
	PoseLeftEar       = 7
	PoseRightEar      = 8
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
)

// HeadRegion holds the pose landmarks needed to locate the head.
// Ears may be missing when the head is turned; shoulders and nose are required.
type HeadRegion struct {
	Nose          Point3D  `json:"nose"`
	LeftEar       *Point3D `json:"left_ear,omitempty"`
	RightEar      *Point3D `json:"right_ear,omitempty"`
	LeftShoulder  Point3D  `json:"left_shoulder"`
	RightShoulder Point3D  `json:"right_shoulder"`
}

// Ellipse describes an elliptical region in normalized image coordinates.
type Ellipse struct {
	CenterX  float64 `json:"cx"`
	CenterY  float64 `json:"cy"`
	RadiusX  float64 `json:"rx"`
	RadiusY  float64 `json:"ry"`
	Rotation float64 `json:"rotation"` // radians, counter-clockwise
}

// HeadTop estimates the top of the head. Head height is approximated as
// 70% of the vertical distance from nose to shoulder midline.
func (r *HeadRegion) HeadTop() (float64, float64) {
	shoulderY := (r.LeftShoulder.Y + r.RightShoulder.Y) / 2
	headHeight := math.Abs(shoulderY-r.Nose.Y) * 0.7
	return r.Nose.X, math.Max(0, r.Nose.Y-headHeight)
}

// HeadWidth estimates head width from the ear span when both ears are
// visible, falling back to half the shoulder span.
func (r *HeadRegion) HeadWidth() float64 {
	if r.LeftEar != nil && r.RightEar != nil {
		return math.Abs(r.LeftEar.X-r.RightEar.X) * 1.2
	}
	return math.Abs(r.LeftShoulder.X-r.RightShoulder.X) * 0.5
}

// Bounds returns the elliptical head region centered between the nose and
// the estimated head top. Radii are floored so a degenerate pose (nose on
// the shoulder line) cannot produce a zero-area ellipse.
func (r *HeadRegion) Bounds() Ellipse {
	const minRadius = 0.02

	_, topY := r.HeadTop()
	centerY := (r.Nose.Y + topY) / 2

	return Ellipse{
		CenterX: r.Nose.X,
		CenterY: centerY,
		RadiusX: math.Max(r.HeadWidth()/2, minRadius),
		RadiusY: math.Max(r.Nose.Y-centerY, minRadius),
	}
}
