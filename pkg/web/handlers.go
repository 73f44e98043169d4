package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/tracking"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Status())
}

type modeInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	InhaleMs int64  `json:"inhale_ms"`
	HoldMs   int64  `json:"hold_ms"`
	ExhaleMs int64  `json:"exhale_ms"`
}

func (s *Server) handleModes(c *fiber.Ctx) error {
	modes := s.ctrl.Modes()
	out := make([]modeInfo, 0, len(modes))
	for _, m := range modes {
		out = append(out, modeInfo{
			Name:     m.Name,
			Title:    m.Title(),
			InhaleMs: m.Inhale.Milliseconds(),
			HoldMs:   m.Hold.Milliseconds(),
			ExhaleMs: m.Exhale.Milliseconds(),
		})
	}
	return c.JSON(out)
}

func (s *Server) handlePetals(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Petals())
}

func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	s.ctrl.Start()
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	s.ctrl.Stop()
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleToggle(c *fiber.Ctx) error {
	s.ctrl.Toggle()
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleChangeMode(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := s.ctrl.ChangeMode(name); err != nil {
		if errors.Is(err, breath.ErrUnknownMode) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	s.AddLog("mode", "Mode: "+name)
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleEnableCamera(c *fiber.Ctx) error {
	if err := s.ctrl.EnableCamera(); err != nil {
		s.AddLog("error", err.Error())
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleGetCameraConfig(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.CameraConfig())
}

func (s *Server) handleSetCameraConfig(c *fiber.Ctx) error {
	var params map[string]any
	if err := c.BodyParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON: "+err.Error())
	}
	if err := s.ctrl.UpdateCameraConfig(params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(s.ctrl.CameraConfig())
}

func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	params, ok := s.ctrl.TrackingTuning()
	if !ok {
		return fiber.NewError(fiber.StatusConflict, "camera not enabled")
	}
	return c.JSON(params)
}

func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	var params tracking.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON: "+err.Error())
	}
	if !s.ctrl.SetTrackingTuning(params) {
		return fiber.NewError(fiber.StatusConflict, "camera not enabled")
	}
	params, _ = s.ctrl.TrackingTuning()
	return c.JSON(params)
}

func (s *Server) handleToggleMusic(c *fiber.Ctx) error {
	on, err := s.ctrl.ToggleMusic()
	if err != nil {
		s.AddLog("error", err.Error())
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	state := "off"
	if on {
		state = "on"
	}
	s.AddLog("music", "Music "+state)
	return c.JSON(fiber.Map{"music": on})
}
