package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/flowdesk/pkg/models"
)

// RecordRepository stores executions and collaboration records.
type RecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordRepository(db *sql.DB, logger *slog.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger}
}

// Executions returns executions of one workflow, or all of them when workflowID is empty.
func (r *RecordRepository) Executions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	query := `
		SELECT id, workflow_id, status, duration_ms, started_at
		FROM workflow_executions
		WHERE ($1 = '' OR workflow_id = $1)
		ORDER BY started_at ASC
	`

	return queryAll(ctx, r, query, workflowID, func(rows *sql.Rows) (*models.Execution, error) {
		var execution models.Execution
		err := rows.Scan(&execution.ID, &execution.WorkflowID, &execution.Status, &execution.DurationMs, &execution.StartedAt)

		return &execution, err
	})
}

func (r *RecordRepository) SaveExecution(ctx context.Context, execution *models.Execution) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_executions (id, workflow_id, status, duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, execution.ID, execution.WorkflowID, execution.Status, execution.DurationMs, execution.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *RecordRepository) Comments(ctx context.Context, workflowID string) ([]*models.Comment, error) {
	query := `
		SELECT id, workflow_id, author, body, created_at
		FROM workflow_comments
		WHERE workflow_id = $1
		ORDER BY created_at ASC
	`

	return queryAll(ctx, r, query, workflowID, func(rows *sql.Rows) (*models.Comment, error) {
		var comment models.Comment
		err := rows.Scan(&comment.ID, &comment.WorkflowID, &comment.Author, &comment.Body, &comment.CreatedAt)

		return &comment, err
	})
}

func (r *RecordRepository) SaveComment(ctx context.Context, comment *models.Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_comments (id, workflow_id, author, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.WorkflowID, comment.Author, comment.Body, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save comment %s: %w", comment.ID, err)
	}

	return nil
}

func (r *RecordRepository) TeamMembers(ctx context.Context, workflowID string) ([]*models.TeamMember, error) {
	query := `
		SELECT id, workflow_id, name, email, role
		FROM workflow_team_members
		WHERE workflow_id = $1
		ORDER BY name ASC
	`

	return queryAll(ctx, r, query, workflowID, func(rows *sql.Rows) (*models.TeamMember, error) {
		var member models.TeamMember
		err := rows.Scan(&member.ID, &member.WorkflowID, &member.Name, &member.Email, &member.Role)

		return &member, err
	})
}

func (r *RecordRepository) SaveTeamMember(ctx context.Context, member *models.TeamMember) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_team_members (id, workflow_id, name, email, role)
		VALUES ($1, $2, $3, $4, $5)
	`, member.ID, member.WorkflowID, member.Name, member.Email, member.Role)
	if err != nil {
		return fmt.Errorf("failed to save team member %s: %w", member.ID, err)
	}

	return nil
}

func (r *RecordRepository) Activities(ctx context.Context, workflowID string) ([]*models.Activity, error) {
	query := `
		SELECT id, workflow_id, kind, message, created_at
		FROM workflow_activities
		WHERE workflow_id = $1
		ORDER BY created_at ASC
	`

	return queryAll(ctx, r, query, workflowID, func(rows *sql.Rows) (*models.Activity, error) {
		var activity models.Activity
		err := rows.Scan(&activity.ID, &activity.WorkflowID, &activity.Kind, &activity.Message, &activity.CreatedAt)

		return &activity, err
	})
}

func (r *RecordRepository) SaveActivity(ctx context.Context, activity *models.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_activities (id, workflow_id, kind, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, activity.ID, activity.WorkflowID, activity.Kind, activity.Message, activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save activity %s: %w", activity.ID, err)
	}

	return nil
}

func queryAll[T any](
	ctx context.Context,
	r *RecordRepository,
	query string,
	workflowID string,
	scan func(rows *sql.Rows) (*T, error),
) ([]*T, error) {
	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*T, 0)

	for rows.Next() {
		record, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}
