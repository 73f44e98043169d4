package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-lotus/pkg/debug"
	"github.com/teslashibe/go-lotus/pkg/tracking"
)

const previewInterval = 200 * time.Millisecond

// EnableCamera loads the face detector and opens the camera the first time it
// is called. Later calls do nothing.
func (s *Session) EnableCamera() error {
	s.camMu.Lock()
	defer s.camMu.Unlock()

	if s.tracker != nil {
		return nil
	}
	ctx := s.runContext()
	if ctx == nil {
		return ErrNotRunning
	}

	s.setFaceStatus(FaceLoading)
	det, err := s.opts.NewDetector(s.opts.Detection)
	if err != nil {
		s.setFaceStatus(FaceFailed)
		return fmt.Errorf("face detector: %w", err)
	}

	src, err := s.opts.OpenCamera(s.cameras.GetConfig())
	if err != nil {
		det.Close()
		s.setFaceStatus(FaceCameraFailed)
		return fmt.Errorf("camera: %w", err)
	}
	s.cameras.Attach(src.Apply)

	tr := tracking.New(s.opts.Tracking, src, det)
	s.tracker = tr
	s.source = src
	s.cameraOn.Store(true)

	go func() {
		if err := src.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("camera stopped", "error", err)
		}
	}()
	go func() {
		if err := tr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("face tracker stopped", "error", err)
		}
	}()
	go s.forward(ctx, tr.Results())
	go s.preview(ctx, src)

	s.setFaceStatus(FaceCameraOn)
	s.logger.Info("camera enabled")
	return nil
}

// CameraConfig returns the camera settings as JSON-friendly values.
func (s *Session) CameraConfig() map[string]any {
	return s.cameras.GetConfigJSON()
}

// UpdateCameraConfig applies a partial settings change to the camera.
func (s *Session) UpdateCameraConfig(params map[string]any) error {
	s.camMu.Lock()
	defer s.camMu.Unlock()
	return s.cameras.UpdateConfig(params)
}

// TrackingTuning returns the live tracker settings. It reports false until the
// camera is enabled.
func (s *Session) TrackingTuning() (tracking.TuningParams, bool) {
	s.camMu.Lock()
	defer s.camMu.Unlock()
	if s.tracker == nil {
		return tracking.TuningParams{}, false
	}
	return s.tracker.GetTuningParams(), true
}

// SetTrackingTuning changes the live tracker settings.
func (s *Session) SetTrackingTuning(params tracking.TuningParams) bool {
	s.camMu.Lock()
	defer s.camMu.Unlock()
	if s.tracker == nil {
		return false
	}
	s.tracker.SetTuningParams(params)
	return true
}

// TrackingStats returns the face tracker counters, if the camera is on.
func (s *Session) TrackingStats() (tracking.Stats, bool) {
	s.camMu.Lock()
	defer s.camMu.Unlock()
	if s.tracker == nil {
		return tracking.Stats{}, false
	}
	return s.tracker.Stats(), true
}

// forward hands detection results to the event loop.
func (s *Session) forward(ctx context.Context, results <-chan tracking.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-results:
			s.post(func() { s.observe(res) })
		}
	}
}

// observe applies one detection result. It runs on the event loop.
func (s *Session) observe(res tracking.Result) {
	s.anchor.Observe(res.Face)

	text := FaceMissing
	if res.Face != nil {
		text = FaceDetected
	}
	if text == s.faceStatus {
		return
	}
	debug.TrackLog("face status", "status", text, "seq", res.Seq)
	s.faceStatus = text
	s.publish()
	if s.pub != nil {
		s.pub.AddLog("face", text)
	}
}

func (s *Session) setFaceStatus(text string) {
	s.do(func() {
		s.faceStatus = text
		s.publish()
	})
}

// preview streams camera frames to the dashboard while anyone is watching.
func (s *Session) preview(ctx context.Context, src FrameSource) {
	ticker := time.NewTicker(previewInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pub := s.pub
			if pub == nil || pub.CameraClients() == 0 {
				continue
			}
			frame, err := src.Capture()
			if err != nil || frame.Seq == lastSeq {
				continue
			}
			lastSeq = frame.Seq
			pub.SendCameraFrame(frame.JPEG)
		}
	}
}
