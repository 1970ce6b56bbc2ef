// Package web provides the dashboard and runtime tuning API for the
// tracking core.
package web

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/drixpyyy/aimcore/internal/log"
	"github.com/drixpyyy/aimcore/pkg/hub"
	"github.com/drixpyyy/aimcore/pkg/tracking"
)

// EventEntry is one recoverable-error event shown on the dashboard.
type EventEntry struct {
	Time    string `json:"time"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// maxEvents bounds the in-memory event buffer.
const maxEvents = 500

// Server is the dashboard and tuning API server. It implements
// tracking.StatusSink so the control loop can publish into it directly.
type Server struct {
	app  *fiber.App
	port string

	config    *tracking.Store
	driver    *tracking.Driver
	scheduler *tracking.Scheduler
	registry  *tracking.Registry

	// Latest aim status for the REST endpoint
	aim   tracking.AimStatus
	aimMu sync.RWMutex

	// Event buffer (newest last)
	events   []EventEntry
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	eventHub  *hub.Hub
}

// NewServer creates the dashboard server wired to the tracking core.
func NewServer(port string, config *tracking.Store, driver *tracking.Driver, scheduler *tracking.Scheduler, registry *tracking.Registry) *Server {
	s := &Server{
		port:      port,
		config:    config,
		driver:    driver,
		scheduler: scheduler,
		registry:  registry,
		events:    make([]EventEntry, 0, maxEvents),
		statusHub: hub.New("status"),
		eventHub:  hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "aimcore",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/targets", s.handleTargets)
	api.Get("/events", s.handleEvents)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)
	api.Post("/active", s.handleSetActive)
	api.Post("/restart", s.handleRestart)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start runs the hubs and the HTTP listener until the context is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)

	go s.statusHub.Run(ctx)
	go s.eventHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			log.Warn("dashboard shutdown failed", "error", err)
		}
	}()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Error("dashboard server failed", "error", err)
		}
	}()
}

// UpdateAim implements tracking.StatusSink. Called on the control loop's
// tick budget; it only copies and queues.
func (s *Server) UpdateAim(status tracking.AimStatus) {
	s.aimMu.Lock()
	s.aim = status
	s.aimMu.Unlock()

	s.statusHub.BroadcastJSON(status)
}

// AddEvent implements tracking.StatusSink.
func (s *Server) AddEvent(kind, message string) {
	entry := EventEntry{
		Time:    time.Now().Format("15:04:05"),
		Kind:    kind,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	s.eventHub.BroadcastJSON(entry)
}
