// Package persistence provides data storage abstraction layer for workflows and their collaboration data.
package persistence

import (
	"context"

	"github.com/dukex/flowdesk/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error

	// Executions returns the executions of one workflow, or of all workflows when id is empty.
	Executions(ctx context.Context, workflowID string) ([]*models.Execution, error)
	SaveExecution(ctx context.Context, execution *models.Execution) error

	Comments(ctx context.Context, workflowID string) ([]*models.Comment, error)
	SaveComment(ctx context.Context, comment *models.Comment) error

	TeamMembers(ctx context.Context, workflowID string) ([]*models.TeamMember, error)
	SaveTeamMember(ctx context.Context, member *models.TeamMember) error

	Activities(ctx context.Context, workflowID string) ([]*models.Activity, error)
	SaveActivity(ctx context.Context, activity *models.Activity) error

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
