package server

import (
	"context"
	"time"

	"github.com/aleister1102/fleetvoice/internal/cache"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/procwatch"
	"github.com/aleister1102/fleetvoice/internal/voice"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Refresher starts refresh cycles and reports on them.
type Refresher interface {
	Trigger(entityIDs ...string) error
	LastReport() (models.RefreshReport, bool)
	HasEntity(id string) bool
	Running() bool
}

// ResultCache is the read side of the result cache.
type ResultCache interface {
	Fresh(entityID string, staleAfter time.Duration) (string, bool)
	Snapshot() []cache.Entry
}

// NextRunner reports the next scheduled refresh.
type NextRunner interface {
	NextRun() (time.Time, error)
}

// ResourceSampler reports browser process and memory usage.
type ResourceSampler interface {
	Usage(ctx context.Context) procwatch.Usage
}

// Dependencies wires the HTTP shell to the core. Scheduler, Resources and
// Gatherer may be nil.
type Dependencies struct {
	Refresher     Refresher
	Cache         ResultCache
	Formatter     *voice.Formatter
	Gatherer      prometheus.Gatherer
	Scheduler     NextRunner
	Resources     ResourceSampler
	DefaultEntity string
	StaleAfter    time.Duration
}

// Server wraps the Fiber app.
type Server struct {
	app    *fiber.App
	addr   string
	logger zerolog.Logger
}

// New creates a server with routes and middleware configured.
func New(addr string, deps Dependencies, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "HTTPServer").Logger()

	app := fiber.New(fiber.Config{
		AppName: "fleetvoice",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	h := &handlers{deps: deps, logger: logger}
	app.Post("/update", h.update)
	app.Get("/update", h.update)
	app.Post("/update/:entityId", h.update)
	app.Get("/update/:entityId", h.update)
	app.Get("/voice", h.voiceResponse)
	app.Post("/voice", h.voiceResponse)
	app.Get("/voice/:entityId", h.voiceResponse)
	app.Post("/voice/:entityId", h.voiceResponse)
	app.Get("/status", h.status)
	app.Get("/healthz", h.health)

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return &Server{app: app, addr: addr, logger: logger}
}

// App exposes the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving on the configured address.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.addr).Msg("HTTP server listening")
	return s.app.Listen(s.addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
