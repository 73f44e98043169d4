package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/geom"
	"github.com/teslashibe/go-lotus/pkg/tracking"
)

type fakeController struct {
	mu     sync.Mutex
	status Status
	camera map[string]any
	tuning *tracking.TuningParams
	music  bool
	camErr error
	calls  []string
}

func newFakeController() *fakeController {
	return &fakeController{
		status: Status{Session: "test", Mode: "balance", Phase: breath.Idle},
		camera: map[string]any{"width": 640, "height": 480},
	}
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeController) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) Modes() []breath.Mode {
	return []breath.Mode{breath.Balance, breath.Calm}
}

func (f *fakeController) Petals() []Petal {
	return []Petal{{Index: 0, Position: geom.V(0.3, 0, 0)}}
}

func (f *fakeController) Start() {
	f.record("start")
	f.mu.Lock()
	f.status.Running = true
	f.status.Phase = breath.Inhale
	f.mu.Unlock()
}

func (f *fakeController) Stop() {
	f.record("stop")
	f.mu.Lock()
	f.status.Running = false
	f.status.Phase = breath.Idle
	f.mu.Unlock()
}

func (f *fakeController) Toggle() bool {
	if f.Status().Running {
		f.Stop()
		return false
	}
	f.Start()
	return true
}

func (f *fakeController) ChangeMode(name string) error {
	if name != "calm" && name != "balance" {
		return fmt.Errorf("%w: %q", breath.ErrUnknownMode, name)
	}
	f.mu.Lock()
	f.status.Mode = name
	f.mu.Unlock()
	return nil
}

func (f *fakeController) EnableCamera() error {
	f.record("camera")
	return f.camErr
}

func (f *fakeController) CameraConfig() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.camera
}

func (f *fakeController) UpdateCameraConfig(params map[string]any) error {
	if w, ok := params["width"].(float64); ok && w < 160 {
		return errors.New("width too small")
	}
	f.mu.Lock()
	for k, v := range params {
		f.camera[k] = v
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeController) ToggleMusic() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.music = !f.music
	return f.music, nil
}

func (f *fakeController) TrackingTuning() (tracking.TuningParams, bool) {
	if f.tuning == nil {
		return tracking.TuningParams{}, false
	}
	return *f.tuning, true
}

func (f *fakeController) SetTrackingTuning(p tracking.TuningParams) bool {
	if f.tuning == nil {
		return false
	}
	*f.tuning = p
	return true
}

func do(t *testing.T, s *Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{"status", "GET", "/api/status", "", 200, `"session":"test"`},
		{"modes", "GET", "/api/modes", "", 200, `"hold_ms":7000`},
		{"petals", "GET", "/api/petals", "", 200, `"index":0`},
		{"start", "POST", "/api/breath/start", "", 200, `"phase":"inhale"`},
		{"toggle", "POST", "/api/breath/toggle", "", 200, `"running":`},
		{"stop", "POST", "/api/breath/stop", "", 200, `"running":false`},
		{"mode", "PUT", "/api/breath/mode/calm", "", 200, `"mode":"calm"`},
		{"unknown mode", "PUT", "/api/breath/mode/nope", "", 404, `unknown breath mode`},
		{"camera config", "GET", "/api/camera/config", "", 200, `"width":640`},
		{"set camera config", "PUT", "/api/camera/config", `{"width":1280}`, 200, `"width":1280`},
		{"bad camera config", "PUT", "/api/camera/config", `{"width":10}`, 400, `too small`},
		{"malformed camera config", "PUT", "/api/camera/config", `{`, 400, `invalid JSON`},
		{"tuning without camera", "GET", "/api/tracking/tuning", "", 409, `camera not enabled`},
		{"music", "POST", "/api/music/toggle", "", 200, `"music":true`},
		{"ws needs upgrade", "GET", "/ws/status", "", 426, ``},
	}

	s := NewServer("0", newFakeController())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, s, tc.method, tc.path, tc.body)
			if code != tc.wantCode {
				t.Errorf("code = %d, want %d (%s)", code, tc.wantCode, body)
			}
			if !strings.Contains(string(body), tc.wantBody) {
				t.Errorf("body = %s, want it to contain %s", body, tc.wantBody)
			}
		})
	}
}

func TestServer_EnableCameraFailure(t *testing.T) {
	ctrl := newFakeController()
	ctrl.camErr = errors.New("no camera")
	s := NewServer("0", ctrl)

	code, body := do(t, s, "POST", "/api/camera/enable", "")
	if code != 503 {
		t.Errorf("code = %d, want 503", code)
	}
	if !strings.Contains(string(body), "no camera") {
		t.Errorf("body = %s", body)
	}

	_, logs := do(t, s, "GET", "/api/logs", "")
	if !strings.Contains(string(logs), `"type":"error"`) {
		t.Errorf("logs = %s, want an error entry", logs)
	}
}

func TestServer_AddLogKeepsNewest(t *testing.T) {
	s := NewServer("0", newFakeController())
	for i := range maxLogs + 5 {
		s.AddLog("info", fmt.Sprintf("event %d", i))
	}

	code, body := do(t, s, "GET", "/api/logs", "")
	if code != 200 {
		t.Fatalf("code = %d (%s)", code, body)
	}
	var logs []LogEntry
	if err := json.Unmarshal(body, &logs); err != nil {
		t.Fatal(err)
	}
	if len(logs) != maxLogs {
		t.Fatalf("len(logs) = %d, want %d", len(logs), maxLogs)
	}
	if logs[0].Message != "event 5" || logs[len(logs)-1].Message != fmt.Sprintf("event %d", maxLogs+4) {
		t.Errorf("kept %q..%q", logs[0].Message, logs[len(logs)-1].Message)
	}
}

func TestServer_Tuning(t *testing.T) {
	ctrl := newFakeController()
	ctrl.tuning = &tracking.TuningParams{DetectionHz: 10, MinConfidence: 0.5}
	s := NewServer("0", ctrl)

	code, body := do(t, s, "PUT", "/api/tracking/tuning", `{"detection_hz":5,"min_confidence":0.7}`)
	if code != 200 {
		t.Fatalf("code = %d (%s)", code, body)
	}
	var got tracking.TuningParams
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.DetectionHz != 5 || got.MinConfidence != 0.7 {
		t.Errorf("tuning = %+v", got)
	}
}

func TestServer_StatusStream(t *testing.T) {
	s := NewServer("0", newFakeController())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.RunHubs(ctx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.App().Listener(ln)
	defer s.App().Shutdown()

	url := "ws://" + ln.Addr().String() + "/ws/status"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.StatusClients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.UpdateStatus(Status{Session: "abc", Phase: breath.Hold, Instruction: "Hold"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]any
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got["phase"] != "hold" || got["instruction"] != "Hold" {
		t.Errorf("status = %v", got)
	}
}
