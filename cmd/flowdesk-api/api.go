// Package main provides the Flowdesk API server implementation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
	"github.com/dukex/flowdesk/pkg/services"
	"github.com/dukex/flowdesk/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	apiToken    string
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	apiToken string,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		apiToken:    apiToken,
	}
}

// Subscribe feeds the activity log from the event bus. It must run before the first request.
func (a *API) Subscribe(ctx context.Context) error {
	recorder := services.NewActivityRecorder(a.persistence, a.logger)

	err := recorder.Register(a.eventBus)
	if err != nil {
		return err
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) App() (*fiber.App, error) {
	catalog, err := models.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	workflowService := services.NewWorkflow(a.persistence, a.eventBus, a.validate, a.logger)
	analyticsService := services.NewAnalytics(a.persistence, a.eventBus, a.validate, a.logger)
	collaborationService := services.NewCollaboration(a.persistence, a.eventBus, a.validate, a.logger)

	handlers := web.NewAPIHandlers(workflowService, analyticsService, collaborationService, catalog)

	app := fiber.New(fiber.Config{
		AppName:     "flowdesk-api",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowdesk API")
	})

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")
	if a.apiToken != "" {
		api.Use(web.BearerAuth(a.apiToken))
	}

	handlers.Register(api)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
