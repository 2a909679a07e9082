package detector

import (
	"math"
	"testing"
	"time"
)

func TestHandLandmarks_Center(t *testing.T) {
	hand := HandAt(0.3, 0.7)

	c := hand.Center()
	if math.Abs(c.X-0.3) > 1e-9 || math.Abs(c.Y-0.7) > 1e-9 {
		t.Errorf("Center() = (%v, %v), want (0.3, 0.7)", c.X, c.Y)
	}
}

func TestHandLandmarks_ReferencePoints(t *testing.T) {
	hand := HandAt(0.5, 0.5)

	points := hand.ReferencePoints()
	if len(points) != 4 {
		t.Fatalf("ReferencePoints() returned %d points, want 4", len(points))
	}
}

func TestHeadRegion_HeadTop(t *testing.T) {
	head := UprightHeadRegion()

	x, y := head.HeadTop()
	if x != head.Nose.X {
		t.Errorf("head top x = %v, want nose x %v", x, head.Nose.X)
	}
	if y >= head.Nose.Y {
		t.Errorf("head top y = %v should be above nose y %v", y, head.Nose.Y)
	}
}

func TestHeadRegion_HeadWidth_PrefersEars(t *testing.T) {
	head := UprightHeadRegion()

	withEars := head.HeadWidth()

	head.LeftEar = nil
	head.RightEar = nil
	withoutEars := head.HeadWidth()

	if withEars <= 0 || withoutEars <= 0 {
		t.Fatalf("head width must be positive, got %v and %v", withEars, withoutEars)
	}
	if withEars == withoutEars {
		t.Error("ear-based and shoulder-based widths should differ for this pose")
	}
}

func TestHeadRegion_Bounds_NonDegenerate(t *testing.T) {
	// Nose on the shoulder line collapses the estimated head height.
	head := &HeadRegion{
		Nose:          Point3D{X: 0.5, Y: 0.6},
		LeftShoulder:  Point3D{X: 0.5, Y: 0.6},
		RightShoulder: Point3D{X: 0.5, Y: 0.6},
	}

	e := head.Bounds()
	if e.RadiusX <= 0 || e.RadiusY <= 0 {
		t.Errorf("Bounds() radii must stay positive, got rx=%v ry=%v", e.RadiusX, e.RadiusY)
	}
}

func TestFrame_Detected(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		frame Frame
		want  bool
	}{
		{"hand and head", NearHandFrame(now), true},
		{"no detections", LostTrackingFrame(now), false},
		{"head only", Frame{Timestamp: now, Head: UprightHeadRegion()}, false},
		{"hand only", Frame{Timestamp: now, Hands: []HandLandmarks{HandAt(0.5, 0.5)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Detected(); got != tt.want {
				t.Errorf("Detected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMockDetector_SequencePlayback(t *testing.T) {
	m := NewMockDetector()
	defer m.Close()

	base := time.Now()
	m.SetFrames([]Frame{
		NearHandFrame(base),
		FarHandFrame(base.Add(33 * time.Millisecond)),
	})

	first, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !first.Detected() {
		t.Error("first frame should carry detections")
	}

	// Sequence holds on the last frame once exhausted.
	for i := 0; i < 3; i++ {
		f, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if !f.Detected() {
			t.Error("held frame should still carry detections")
		}
	}
}
