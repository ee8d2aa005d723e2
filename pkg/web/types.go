package web

import (
	"time"

	"github.com/dukex/flowdesk/pkg/models"
)

// RecordExecutionRequest is the body of POST /api/workflows/:id/executions.
type RecordExecutionRequest struct {
	Status     models.ExecutionStatus `json:"status"`
	DurationMs int64                  `json:"durationMs"`
	StartedAt  *time.Time             `json:"startedAt,omitempty"`
}

func (r RecordExecutionRequest) Execution() *models.Execution {
	execution := &models.Execution{
		Status:     r.Status,
		DurationMs: r.DurationMs,
	}

	if r.StartedAt != nil {
		execution.StartedAt = r.StartedAt.UTC()
	}

	return execution
}

type CreateCommentRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

func (r CreateCommentRequest) Comment() *models.Comment {
	return &models.Comment{Author: r.Author, Body: r.Body}
}

type AddTeamMemberRequest struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.TeamRole `json:"role"`
}

func (r AddTeamMemberRequest) TeamMember() *models.TeamMember {
	return &models.TeamMember{Name: r.Name, Email: r.Email, Role: r.Role}
}

// CatalogResponse lists what the builder palette offers.
type CatalogResponse struct {
	Triggers  []models.CatalogEntry `json:"triggers"`
	Actions   []models.CatalogEntry `json:"actions"`
	StepTypes []models.StepType     `json:"stepTypes"`
}
