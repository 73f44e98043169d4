// Package web serves the lotus dashboard: a small control API plus
// websocket streams of status changes and camera frames.
package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-lotus/internal/log"
	"github.com/teslashibe/go-lotus/pkg/hub"
)

const maxLogs = 500

// LogEntry is one dashboard event line.
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // phase, mode, face, music, error
	Message string `json:"message"`
}

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	port string
	ctrl Controller
	log  *slog.Logger

	logs   []LogEntry
	logsMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub
}

// NewServer builds the routes. Nothing listens until Start.
func NewServer(port string, ctrl Controller) *Server {
	s := &Server{
		port:      port,
		ctrl:      ctrl,
		log:       log.Component("web"),
		logs:      make([]LogEntry, 0, maxLogs),
		statusHub: hub.New("status"),
		logHub:    hub.New("logs"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Lotus",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/modes", s.handleModes)
	api.Get("/petals", s.handlePetals)
	api.Get("/logs", s.handleGetLogs)

	api.Post("/breath/start", s.handleStart)
	api.Post("/breath/stop", s.handleStop)
	api.Post("/breath/toggle", s.handleToggle)
	api.Put("/breath/mode/:name", s.handleChangeMode)

	api.Post("/camera/enable", s.handleEnableCamera)
	api.Get("/camera/config", s.handleGetCameraConfig)
	api.Put("/camera/config", s.handleSetCameraConfig)

	api.Get("/tracking/tuning", s.handleGetTuning)
	api.Put("/tracking/tuning", s.handleSetTuning)

	api.Post("/music/toggle", s.handleToggleMusic)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))
	app.Get("/ws/logs", websocket.New(s.serveHub(s.logHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// RunHubs runs the broadcast hubs until ctx is cancelled.
func (s *Server) RunHubs(ctx context.Context) {
	go s.statusHub.Run(ctx)
	go s.logHub.Run(ctx)
	go s.cameraHub.Run(ctx)
}

// Start runs the hubs and listens until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.RunHubs(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.log.Warn("shutdown", "error", err)
		}
	}()

	s.log.Info("dashboard listening", "url", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// UpdateStatus pushes a status snapshot to /ws/status subscribers.
func (s *Server) UpdateStatus(st Status) {
	if err := s.statusHub.BroadcastJSON(st); err != nil {
		s.log.Warn("encode status", "error", err)
	}
}

// AddLog records an event and pushes it to /ws/logs subscribers.
func (s *Server) AddLog(kind, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    kind,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	if err := s.logHub.BroadcastJSON(entry); err != nil {
		s.log.Warn("encode log entry", "error", err)
	}
}

// SendCameraFrame pushes a JPEG preview to /ws/camera subscribers.
func (s *Server) SendCameraFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// StatusClients returns the number of status subscribers.
func (s *Server) StatusClients() int {
	return s.statusHub.ClientCount()
}

// CameraClients returns the number of camera preview subscribers.
func (s *Server) CameraClients() int {
	return s.cameraHub.ClientCount()
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.NewClient(h, c).Serve()
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
