package camera

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-lotus/internal/log"
	"gocv.io/x/gocv"
)

// Webcam reads frames from a local capture device. A background loop keeps
// only the latest frame; Capture never blocks on the device.
type Webcam struct {
	mu     sync.RWMutex
	cap    *gocv.VideoCapture
	config Config
	latest Frame
	seq    uint64
	closed bool
}

// Open opens the device named by cfg.DeviceID and applies cfg.
func Open(cfg Config) (*Webcam, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("camera config: %w", err)
	}

	vc, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %d: device not available", cfg.DeviceID)
	}

	w := &Webcam{cap: vc}
	w.apply(cfg)

	log.Info("camera opened",
		"device", cfg.DeviceID,
		"width", cfg.Width,
		"height", cfg.Height,
		"fps", cfg.Framerate)

	return w, nil
}

// Apply changes capture settings on the open device. It is suitable as
// the function passed to Manager.Attach.
func (w *Webcam) Apply(cfg Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.apply(cfg)
	return nil
}

func (w *Webcam) apply(cfg Config) {
	w.cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	w.cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	w.cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	if cfg.Brightness > 0 {
		w.cap.Set(gocv.VideoCaptureBrightness, cfg.Brightness)
	}
	w.config = cfg
}

// Run captures frames until ctx is cancelled or the device stops delivering.
func (w *Webcam) Run(ctx context.Context) error {
	img := gocv.NewMat()
	defer img.Close()

	misses := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w.mu.RLock()
		closed := w.closed
		cfg := w.config
		ok := !closed && w.cap.Read(&img)
		w.mu.RUnlock()

		if closed {
			return ErrClosed
		}
		if !ok || img.Empty() {
			misses++
			if misses == 30 {
				log.Warn("camera delivering no frames", "device", cfg.DeviceID)
			}
			time.Sleep(frameInterval(cfg))
			continue
		}
		misses = 0

		data, err := encode(img, cfg)
		if err != nil {
			log.Warn("frame encode failed", "error", err)
			continue
		}

		w.mu.Lock()
		w.seq++
		w.latest = Frame{JPEG: data, Seq: w.seq, At: time.Now()}
		w.mu.Unlock()
	}
}

// Capture returns the most recent frame.
func (w *Webcam) Capture() (Frame, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return Frame{}, ErrClosed
	}
	if w.seq == 0 {
		return Frame{}, ErrNoFrame
	}
	return w.latest, nil
}

// Config returns the settings currently applied to the device.
func (w *Webcam) Config() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Close releases the device. Run returns ErrClosed on its next iteration.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.cap.Close()
}

func encode(img gocv.Mat, cfg Config) ([]byte, error) {
	if cfg.Mirror {
		gocv.Flip(img, &img, 1)
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func frameInterval(cfg Config) time.Duration {
	if cfg.Framerate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(cfg.Framerate)
}
