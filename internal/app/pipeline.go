package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/writingdeveloper/dont-touch/internal/proximity"
)

// runPipeline is the capture loop. It polls the camera at CaptureFPS,
// down-samples by the configured frame skip, and runs each kept frame
// through detection, the proximity metric and the analyzer.
//
// The analyzer works from sample timestamps, so skipped frames change only
// how often it is consulted, never when an alert fires. Observer dispatch
// goes through the alert queue and the snapshot mailbox; nothing here waits
// on a consumer.
func (a *App) runPipeline(stopCh, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / CaptureFPS)
	defer ticker.Stop()

	rollover := time.NewTicker(RolloverInterval)
	defer rollover.Stop()

	frameCount := 0

	for {
		select {
		case <-stopCh:
			return

		case <-rollover.C:
			if a.recorder != nil {
				a.recorder.Rollover(time.Now())
			}

		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frameCount++
			if skip := a.analyzer.Config().FrameSkip; frameCount%skip != 0 {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			a.processFrame(frame)
			frame.Close()
		}
	}
}

// processFrame runs one frame through the detection pipeline and publishes
// the outcome. Detection failures degrade to a no-sample observation.
func (a *App) processFrame(frame *gocv.Mat) {
	now := time.Now()

	detected, err := a.Detector().Detect(frame)
	var sample proximity.Sample
	if err != nil {
		log.Printf("Error detecting landmarks: %v", err)
		sample = proximity.NoSample(now)
	} else {
		sample = proximity.Measure(detected)
	}

	result := a.analyzer.Advance(sample)

	a.publishSnapshot(Snapshot{
		Timestamp: now,
		Running:   true,
		Result:    result,
	})

	if result.Alert != nil {
		if a.recorder != nil {
			a.recorder.Record(*result.Alert)
		}
		a.alertCh <- *result.Alert
	}

	a.publishPreview(frame)
}

// publishPreview encodes the frame into the preview mailbox when preview is
// on. A failed encode drops the preview frame only; detection already ran.
func (a *App) publishPreview(frame *gocv.Mat) {
	if !a.PreviewEnabled() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		log.Printf("Error encoding preview frame: %v", err)
		return
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	a.previewMu.Lock()
	if a.previewEnabled {
		a.previewFrame = data
	}
	a.previewMu.Unlock()
}
