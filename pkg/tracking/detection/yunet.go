package detection

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-lotus/pkg/debug"
	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned for frames with no decodable pixels.
var ErrEmptyFrame = errors.New("empty frame")

// YuNetDetector runs the YuNet face model through OpenCV's FaceDetectorYN.
// Detect calls are serialised.
type YuNetDetector struct {
	mu       sync.Mutex
	detector gocv.FaceDetectorYN
	config   Config
}

// NewYuNet loads the YuNet model at cfg.ModelPath.
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("detector config: %w", err)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	// Detect resets the input size to each frame's dimensions.
	fd := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		float32(cfg.NMSThresh),
		cfg.TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{detector: fd, config: cfg}, nil
}

// Detect returns every face in a JPEG frame, normalised to the frame size.
func (d *YuNetDetector) Detect(frame []byte) ([]Detection, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, ErrEmptyFrame
	}

	fw, fh := float64(img.Cols()), float64(img.Rows())
	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	d.detector.Detect(img, &faces)

	// One row per face: box in pixels (0-3), five landmarks (4-13), score (14).
	out := make([]Detection, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		out = append(out, Detection{
			X:          float64(faces.GetFloatAt(r, 0)) / fw,
			Y:          float64(faces.GetFloatAt(r, 1)) / fh,
			W:          float64(faces.GetFloatAt(r, 2)) / fw,
			H:          float64(faces.GetFloatAt(r, 3)) / fh,
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}

	if len(out) > 0 {
		debug.TrackLog("faces", "count", len(out), "width", img.Cols(), "height", img.Rows())
	}
	return out, nil
}

// Close frees the OpenCV model.
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
