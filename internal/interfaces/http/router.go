package http

import (
	"context"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ResourceUC     *usecase.ResourceUseCase
	MovementQuery  *usecase.MovementQueryUseCase
	DepartmentUC   *usecase.DepartmentUseCase
	RecordMovement *ledger.RecordMovementUseCase
	BalanceSeries  *ledger.BalanceSeriesUseCase
	JWTSecret      string
	Logger         *logger.Logger
}

// AppConfig opciones de la aplicación Fiber completa.
type AppConfig struct {
	Name     string
	Metrics  *metrics.Registry           // nil = sin /metrics
	Ready    func(context.Context) error // comprobación de /health; nil = siempre ok
	DocsFile string                      // vacío = sin /docs
}

// NewApp construye la aplicación con middlewares globales, rutas públicas y la API.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 << 20,
		ErrorHandler: ErrorHandler(deps.Logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.Logger))
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.DocsFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.DocsFile,
			Path:     "docs",
			Title:    "Strategic Resource Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if cfg.Ready != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := cfg.Ready(ctx); err != nil {
				deps.Logger.Warn().Err(err).Msg("health: almacenamiento no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "service": cfg.Name})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas exigen Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	read := RequirePermission(access.PermRead)

	resources := api.Group("/resources")
	resourceHandler := NewResourceHandler(deps.ResourceUC, deps.BalanceSeries, deps.Logger)
	resources.Get("/", read, resourceHandler.List)
	resources.Post("/", RequirePermission(access.PermCreateResource), resourceHandler.Create)
	resources.Get("/:id", read, resourceHandler.GetByID)
	resources.Get("/:id/series", read, resourceHandler.Series)
	resources.Get("/:id/integrity", read, resourceHandler.Integrity)

	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.RecordMovement, deps.MovementQuery, deps.Logger)
	movements.Get("/", read, movementHandler.List)
	movements.Post("/", RequirePermission(access.PermCreateMovement), movementHandler.Create)

	departments := api.Group("/departments")
	departmentHandler := NewDepartmentHandler(deps.DepartmentUC, deps.Logger)
	departments.Get("/", read, departmentHandler.List)
}
