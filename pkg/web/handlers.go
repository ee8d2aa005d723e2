// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/keyauth"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/services"
)

var errInvalidJSON = errors.New("invalid JSON format")

type APIHandlers struct {
	workflowService      *services.Workflow
	analyticsService     *services.Analytics
	collaborationService *services.Collaboration
	catalog              *models.Catalog
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	analyticsService *services.Analytics,
	collaborationService *services.Collaboration,
	catalog *models.Catalog,
) *APIHandlers {
	return &APIHandlers{
		workflowService:      workflowService,
		analyticsService:     analyticsService,
		collaborationService: collaborationService,
		catalog:              catalog,
	}
}

// Register mounts the workflow routes on router. The global analytics route is
// registered ahead of /:id so it is not taken for a workflow id.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/catalog", h.GetCatalog)

	w := router.Group("/workflows")
	w.Get("/analytics", h.GetGlobalAnalytics)
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Put("/:id", h.ReplaceWorkflow)
	w.Patch("/:id", h.PatchWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)

	w.Get("/:id/analytics", h.GetWorkflowAnalytics)
	w.Post("/:id/executions", h.RecordExecution)
	w.Get("/:id/comments", h.GetComments)
	w.Post("/:id/comments", h.CreateComment)
	w.Get("/:id/team", h.GetTeam)
	w.Post("/:id/team", h.AddTeamMember)
	w.Get("/:id/activity", h.GetActivity)
}

// BearerAuth rejects requests whose Authorization header does not carry token.
func BearerAuth(token string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ fiber.Ctx, key string) (bool, error) {
			if key != token {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}

			return true, nil
		},
		ErrorHandler: func(c fiber.Ctx, _ error) error {
			return unauthorized(c)
		},
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowdesk API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowdesk API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetCatalog(c fiber.Ctx) error {
	return c.JSON(CatalogResponse{
		Triggers:  h.catalog.Triggers(),
		Actions:   h.catalog.Actions(),
		StepTypes: models.StepTypes(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	workflow, err := bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) ReplaceWorkflow(c fiber.Ctx) error {
	workflow, err := bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), c.Params("id"), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) PatchWorkflow(c fiber.Ctx) error {
	patch, err := bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Patch(c.Context(), c.Params("id"), patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	err := h.workflowService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetGlobalAnalytics(c fiber.Ctx) error {
	analytics, err := h.analyticsService.Global(c.Context(), c.Query("timeRange"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(analytics)
}

func (h *APIHandlers) GetWorkflowAnalytics(c fiber.Ctx) error {
	analytics, err := h.analyticsService.ForWorkflow(c.Context(), c.Params("id"), c.Query("timeRange"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(analytics)
}

func (h *APIHandlers) RecordExecution(c fiber.Ctx) error {
	var req RecordExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	execution, err := h.analyticsService.RecordExecution(c.Context(), c.Params("id"), req.Execution())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) GetComments(c fiber.Ctx) error {
	comments, err := h.collaborationService.Comments(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(comments)
}

func (h *APIHandlers) CreateComment(c fiber.Ctx) error {
	var req CreateCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	comment, err := h.collaborationService.AddComment(c.Context(), c.Params("id"), req.Comment())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *APIHandlers) GetTeam(c fiber.Ctx) error {
	members, err := h.collaborationService.TeamMembers(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(members)
}

func (h *APIHandlers) AddTeamMember(c fiber.Ctx) error {
	var req AddTeamMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	member, err := h.collaborationService.AddTeamMember(c.Context(), c.Params("id"), req.TeamMember())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

func (h *APIHandlers) GetActivity(c fiber.Ctx) error {
	activities, err := h.collaborationService.Activity(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(activities)
}

// bindWorkflow decodes a workflow body. Step configs are checked against their schema while decoding.
func bindWorkflow(c fiber.Ctx) (*models.Workflow, error) {
	var workflow models.Workflow

	err := c.Bind().JSON(&workflow)
	if err != nil {
		if errors.Is(err, models.ErrUnknownStepType) || errors.Is(err, models.ErrInvalidStepConfig) {
			return nil, err
		}

		return nil, errInvalidJSON
	}

	return &workflow, nil
}
