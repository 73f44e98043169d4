package web

import (
	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/geom"
	"github.com/teslashibe/go-lotus/pkg/tracking"
)

// Controller is the running lotus as seen by the dashboard. Implementations
// must be safe to call from fiber handler goroutines.
type Controller interface {
	Status() Status
	Modes() []breath.Mode
	Petals() []Petal

	Start()
	Stop()
	Toggle() bool
	ChangeMode(name string) error

	EnableCamera() error
	CameraConfig() map[string]any
	UpdateCameraConfig(params map[string]any) error

	ToggleMusic() (bool, error)

	TrackingTuning() (tracking.TuningParams, bool)
	SetTrackingTuning(params tracking.TuningParams) bool
}

// Status is the dashboard view of the lotus.
type Status struct {
	Session     string       `json:"session"`
	Phase       breath.Phase `json:"phase"`
	Instruction string       `json:"instruction"`
	Mode        string       `json:"mode"`
	Running     bool         `json:"running"`
	Cycles      int          `json:"cycles"`
	CycleText   string       `json:"cycle_text"`
	ElapsedMs   int64        `json:"elapsed_ms"`
	DurationMs  int64        `json:"duration_ms"`

	HasTarget  bool      `json:"has_target"`
	Anchor     geom.Vec3 `json:"anchor"`
	Camera     bool      `json:"camera"`
	FaceStatus string    `json:"face_status"`

	Music bool   `json:"music"`
	Track string `json:"track,omitempty"`
}

// Petal is one petal's current transform.
type Petal struct {
	Index    int        `json:"index"`
	Position geom.Vec3  `json:"position"`
	Rotation geom.Euler `json:"rotation"`
}
