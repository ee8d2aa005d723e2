package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/dukex/flowdesk/pkg/persistence"
	"github.com/dukex/flowdesk/pkg/services"
)

func problem(c fiber.Ctx, status int, kind, detail string) error {
	return c.Status(status).JSON(problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail))
}

func badRequest(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusBadRequest, "invalid_body", detail)
}

func unauthorized(c fiber.Ctx) error {
	return problem(c, fiber.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
}

// handleServiceError maps service errors onto problem responses. Rejected
// requests use the lower-cased service error code as problem type.
func handleServiceError(c fiber.Ctx, err error) error {
	var serviceErr *services.ServiceError

	switch {
	case errors.As(err, &serviceErr):
		return problem(c, fiber.StatusBadRequest, strings.ToLower(serviceErr.Code), serviceErr.Message)

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case persistence.IsWorkflowNotFound(err):
		return problem(c, fiber.StatusNotFound, "workflow_not_found", "workflow not found")

	default:
		return c.Status(fiber.StatusInternalServerError).JSON(problems.NewStatusProblem(fiber.StatusInternalServerError).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err))
	}
}
