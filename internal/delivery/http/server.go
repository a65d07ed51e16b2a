package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/safety-microservice/internal/config"
	"github.com/safety-microservice/internal/delivery/http/handler"
	"github.com/safety-microservice/internal/delivery/http/middleware"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// HealthChecker - зависимость, умеющая проверять свое здоровье
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	locationHandler *handler.LocationHandler
	zoneHandler     *handler.ZoneHandler
	alertHandler    *handler.AlertHandler
	wsHandler       *handler.WSHandler

	// Health-зависимости
	db    HealthChecker
	redis HealthChecker
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	locationHandler *handler.LocationHandler,
	zoneHandler *handler.ZoneHandler,
	alertHandler *handler.AlertHandler,
	wsHandler *handler.WSHandler,
	db HealthChecker,
	redis HealthChecker,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Tourist Safety Microservice",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		locationHandler: locationHandler,
		zoneHandler:     zoneHandler,
		alertHandler:    alertHandler,
		wsHandler:       wsHandler,
		db:              db,
		redis:           redis,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.healthHandler)

	// Location ingest and score read surface
	api.Post("/locations", s.locationHandler.IngestPing)
	api.Get("/tourists/:id/score", s.locationHandler.GetTouristScore)

	// Zone routes (authority workflow)
	api.Post("/zones", s.zoneHandler.CreateZone)
	api.Get("/zones", s.zoneHandler.ListZones)
	api.Delete("/zones/:id", s.zoneHandler.DeactivateZone)

	// Alert read surface
	api.Get("/alerts/recent", s.alertHandler.GetRecentAlerts)

	// Subscriber protocol
	s.app.Use("/ws/alerts", s.wsHandler.Upgrade)
	s.app.Get("/ws/alerts", s.wsHandler.Subscribe())
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	checks := fiber.Map{}

	if err := s.db.Health(ctx); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
	} else {
		checks["database"] = "ok"
	}

	if err := s.redis.Health(ctx); err != nil {
		status = "degraded"
		checks["redis"] = err.Error()
	} else {
		checks["redis"] = "ok"
	}

	return c.JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now(),
	})
}

// Start запускает сервер (блокируется)
func (s *Server) Start() error {
	return s.app.Listen(s.config.GetServerAddr())
}

// Shutdown - graceful shutdown сервера
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
