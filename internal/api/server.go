// Package api exposes the HTTP surface. Authentication lives in the upstream
// gateway; handlers read the actor's identity from the X-User-ID header it
// installs.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/vivabem/vivabem-server/internal/config"
	"github.com/vivabem/vivabem-server/internal/consent"
	"github.com/vivabem/vivabem-server/internal/medication"
	"github.com/vivabem/vivabem-server/internal/report"
	"go.uber.org/zap"
)

const actorHeader = "X-User-ID"

// Server handles the HTTP API
type Server struct {
	app        *fiber.App
	config     *config.Config
	medication *medication.Service
	reports    *report.Service
	consent    *consent.Service
	logger     *zap.Logger
}

// New creates a new API server
func New(cfg *config.Config, med *medication.Service, reports *report.Service, cs *consent.Service, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:        app,
		config:     cfg,
		medication: med,
		reports:    reports,
		consent:    cs,
		logger:     logger.Named("api"),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api/v1", s.actorMiddleware())

	api.Get("/medicines", s.handleListMedicines)
	api.Post("/medicines", s.handleCreateMedicine)
	api.Delete("/medicines/:id", s.handleDeleteMedicine)

	api.Get("/tasks/today", s.handleTodayTasks)
	api.Patch("/tasks/:id/taken", s.handleSetTaskTaken)

	api.Post("/reports/daily", s.handleDailyReport)
	api.Post("/reports/narrative", s.handleNarrativeReport)

	api.Get("/consent", s.handleGetConsent)
	api.Put("/consent", s.handleUpdateConsent)
}

// actorMiddleware requires the gateway-installed identity header
func (s *Server) actorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := c.Get(actorHeader)
		if actor == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing " + actorHeader + " header"})
		}
		c.Locals("actor", actor)
		return c.Next()
	}
}

func actorID(c *fiber.Ctx) string {
	actor, _ := c.Locals("actor").(string)
	return actor
}

// Start starts the server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
