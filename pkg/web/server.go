// Package web exposes the capture pipeline to the wine-cellar front end:
// session lifecycle, one-shot label capture, avatar normalization, and a
// live websocket viewfinder.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/cellarview/go-cellarcam/pkg/capture"
	"github.com/cellarview/go-cellarcam/pkg/device"
	"github.com/cellarview/go-cellarcam/pkg/encode"
	"github.com/cellarview/go-cellarcam/pkg/hub"
	"github.com/cellarview/go-cellarcam/pkg/pipeline"
)

// previewInterval is how often viewfinder frames are pushed to clients.
const previewInterval = 100 * time.Millisecond

// previewQuality is the JPEG quality for viewfinder frames. Lower than
// label quality: these are transient and bandwidth-bound.
const previewQuality = 70

// Server is the capture service HTTP/websocket surface.
type Server struct {
	app  *fiber.App
	port string

	pipeline *pipeline.Pipeline
	provider device.Provider
	logger   *slog.Logger

	previewHub *hub.Hub
	statusHub  *hub.Hub

	previewMu     sync.Mutex
	previewCancel context.CancelFunc
}

// NewServer creates the capture service on the given port.
func NewServer(port string, p *pipeline.Pipeline, provider device.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:       port,
		pipeline:   p,
		provider:   provider,
		logger:     logger,
		previewHub: hub.New("preview"),
		statusHub:  hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "cellarcam",
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024, // uploads decode in memory
	})

	// CORS for the front end dev server
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/devices", s.handleDevices)
	api.Get("/session", s.handleSessionStatus)
	api.Post("/session", s.handleOpenSession)
	api.Delete("/session", s.handleCloseSession)
	api.Post("/session/flip", s.handleFlipSession)
	api.Post("/capture", s.handleCapture)
	api.Post("/normalize", s.handleNormalize)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	go s.previewHub.Run()
	go s.statusHub.Run()

	s.logger.Info("capture server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the server and tears down any live capture session.
func (s *Server) Shutdown() error {
	s.stopPreview()
	s.pipeline.Manager().Shutdown()
	return s.app.Shutdown()
}

// startPreview begins pushing viewfinder frames from the session to the
// preview hub until the session stops serving frames.
func (s *Server) startPreview(session *capture.Session) {
	s.stopPreview()

	ctx, cancel := context.WithCancel(context.Background())
	s.previewMu.Lock()
	s.previewCancel = cancel
	s.previewMu.Unlock()

	manager := s.pipeline.Manager()
	go func() {
		ticker := time.NewTicker(previewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.previewHub.ClientCount() == 0 {
					continue
				}
				frame, err := manager.GrabFrame(ctx, session)
				if err != nil {
					// Session closed or superseded; the loop is done.
					return
				}
				artifact, err := encode.EncodeFrame(frame, previewQuality, "preview.jpg")
				if err != nil {
					s.logger.Warn("preview encode failed", "error", err)
					continue
				}
				s.previewHub.BroadcastBinary(artifact.Bytes)
			}
		}
	}()
}

func (s *Server) stopPreview() {
	s.previewMu.Lock()
	defer s.previewMu.Unlock()

	if s.previewCancel != nil {
		s.previewCancel()
		s.previewCancel = nil
	}
}

// broadcastStatus pushes the current session state to status clients.
func (s *Server) broadcastStatus() {
	s.statusHub.BroadcastJSON(sessionState(s.pipeline.Manager().Session()))
}

// handlePreviewWS streams viewfinder frames to a websocket client.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	hub.NewClient(s.previewHub, c).Run()
}

// handleStatusWS streams session state changes to a websocket client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.statusHub, c).Run()
}
