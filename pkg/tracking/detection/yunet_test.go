package detection

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// modelPath walks up from the test directory looking for the YuNet model.
func modelPath(t *testing.T) string {
	t.Helper()
	name := filepath.Base(DefaultConfig().ModelPath)
	dir, err := os.Getwd()
	if err != nil {
		t.Skip("no working directory")
	}
	for ; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		p := filepath.Join(dir, "models", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skipf("%s not found; skipping model tests", name)
	return ""
}

func newTestYuNet(t *testing.T) *YuNetDetector {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ModelPath = modelPath(t)
	d, err := NewYuNet(cfg)
	if err != nil {
		t.Fatalf("NewYuNet: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func solidJPEG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}

func TestNewYuNet_Errors(t *testing.T) {
	missing := DefaultConfig()
	missing.ModelPath = filepath.Join(t.TempDir(), "absent.onnx")
	if _, err := NewYuNet(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing model: got %v, want fs.ErrNotExist", err)
	}

	invalid := DefaultConfig()
	invalid.ConfidenceThresh = 0
	if _, err := NewYuNet(invalid); err == nil {
		t.Error("zero confidence threshold accepted")
	}
}

func TestYuNet_RejectsBadFrames(t *testing.T) {
	d := newTestYuNet(t)
	for name, frame := range map[string][]byte{
		"empty":    nil,
		"not jpeg": []byte("not a jpeg"),
	} {
		if _, err := d.Detect(frame); err == nil {
			t.Errorf("%s frame: expected an error", name)
		}
	}
}

func TestYuNet_NoFaceInBlankFrame(t *testing.T) {
	d := newTestYuNet(t)
	dets, err := d.Detect(solidJPEG(320, 240, color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(dets) != 0 {
		t.Errorf("found %d faces in a blank frame", len(dets))
	}
}

func TestYuNet_ConcurrentDetect(t *testing.T) {
	d := newTestYuNet(t)
	frame := solidJPEG(320, 240, color.RGBA{R: 100, G: 100, B: 100, A: 255})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Detect(frame); err != nil {
				t.Errorf("Detect: %v", err)
			}
		}()
	}
	wg.Wait()
}
