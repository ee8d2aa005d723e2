package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const selectWorkflow = `
	SELECT
		id
	  , name
	  , description
	  , status
	  , workflow_trigger
	  , steps
	  , created_at
	  , updated_at
	FROM workflows
`

type scanner interface {
	Scan(dest ...any) error
}

// GetAll returns all workflows from the database, oldest first.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, selectWorkflow+" ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, selectWorkflow+" WHERE id = $1", id)

	workflow, err := r.scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save upserts a workflow. CreatedAt is stamped on first save.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt == "" {
		workflow.CreatedAt = models.FormatTimestamp(now)
	}

	if workflow.UpdatedAt == "" {
		workflow.UpdatedAt = models.FormatTimestamp(now)
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	var triggerJSON []byte

	if workflow.Trigger != nil {
		encoded, err := json.Marshal(workflow.Trigger)
		if err != nil {
			return fmt.Errorf("failed to marshal trigger: %w", err)
		}

		triggerJSON = encoded
	}

	steps := workflow.Steps
	if steps == nil {
		steps = []*models.WorkflowStep{}
	}

	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, description, status, workflow_trigger, steps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			workflow_trigger = EXCLUDED.workflow_trigger,
			steps = EXCLUDED.steps,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.Status,
		triggerJSON,
		stepsJSON,
		models.ParseTimestamp(workflow.CreatedAt),
		models.ParseTimestamp(workflow.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		triggerJSON []byte
		stepsJSON   []byte
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.Status,
		&triggerJSON,
		&stepsJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(triggerJSON) > 0 {
		var trigger models.Trigger
		if err := json.Unmarshal(triggerJSON, &trigger); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger of workflow %s: %w", workflow.ID, err)
		}

		workflow.Trigger = &trigger
	}

	if err := json.Unmarshal(stepsJSON, &workflow.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps of workflow %s: %w", workflow.ID, err)
	}

	workflow.CreatedAt = models.FormatTimestamp(createdAt)
	workflow.UpdatedAt = models.FormatTimestamp(updatedAt)

	return &workflow, nil
}
