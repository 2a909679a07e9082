// Package testdata provides synthetic landmark sequences for pipeline
// tests. Sequences carry explicit timestamps so tests drive the analyzer
// on a synthetic clock instead of waiting out real trigger times.
package testdata

import (
	"time"

	"github.com/writingdeveloper/dont-touch/internal/detector"
)

// TouchSequence returns n frames with a hand held inside the head region,
// spaced step apart starting at start.
func TouchSequence(start time.Time, step time.Duration, n int) []detector.Frame {
	frames := make([]detector.Frame, n)
	for i := range frames {
		frames[i] = detector.NearHandFrame(start.Add(time.Duration(i) * step))
	}
	return frames
}

// GlanceSequence returns a brief near phase followed by far frames, short
// enough that no alert should fire.
func GlanceSequence(start time.Time, step time.Duration, nearCount, farCount int) []detector.Frame {
	frames := make([]detector.Frame, 0, nearCount+farCount)
	ts := start
	for i := 0; i < nearCount; i++ {
		frames = append(frames, detector.NearHandFrame(ts))
		ts = ts.Add(step)
	}
	for i := 0; i < farCount; i++ {
		frames = append(frames, detector.FarHandFrame(ts))
		ts = ts.Add(step)
	}
	return frames
}

// FlickerSequence returns near frames with every flickerEvery-th frame
// replaced by a lost-tracking observation, simulating momentary detector
// dropouts during a sustained touch.
func FlickerSequence(start time.Time, step time.Duration, n, flickerEvery int) []detector.Frame {
	frames := make([]detector.Frame, n)
	for i := range frames {
		ts := start.Add(time.Duration(i) * step)
		if flickerEvery > 0 && i > 0 && i%flickerEvery == 0 {
			frames[i] = detector.LostTrackingFrame(ts)
		} else {
			frames[i] = detector.NearHandFrame(ts)
		}
	}
	return frames
}
