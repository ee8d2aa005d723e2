// Package postgresql stores workflows and their executions, comments, team members and
// activity in PostgreSQL. Schema changes run as versioned migrations on startup.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence/sqlbase"
)

const (
	maxOpenConns       = 10
	connMaxIdleTime    = 5 * time.Minute
	healthCheckTimeout = 2 * time.Second
)

type Persistence struct {
	db        *sql.DB
	logger    *slog.Logger
	workflows *WorkflowRepository
	records   *RecordRepository
}

// NewPersistence connects to databaseURL and migrates the schema. The connection is
// closed again when either step fails.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	logger = logger.With("module", "postgresql")

	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	database.SetMaxOpenConns(maxOpenConns)
	database.SetConnMaxIdleTime(connMaxIdleTime)

	err = setup(ctx, logger, database)
	if err != nil {
		return nil, errors.Join(err, database.Close())
	}

	return &Persistence{
		db:        database,
		logger:    logger,
		workflows: NewWorkflowRepository(database, logger),
		records:   NewRecordRepository(database, logger),
	}, nil
}

func setup(ctx context.Context, logger *slog.Logger, database *sql.DB) error {
	err := database.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

// HealthCheck pings the database, giving up after a short timeout.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return p.workflows.GetAll(ctx)
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return p.workflows.GetByID(ctx, id)
}

// SaveWorkflow upserts by id.
func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return p.workflows.Save(ctx, workflow)
}

// DeleteWorkflow removes the workflow row. Its records stay, so the activity feed survives.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.workflows.Delete(ctx, id)
}

func (p *Persistence) Executions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return p.records.Executions(ctx, workflowID)
}

func (p *Persistence) SaveExecution(ctx context.Context, execution *models.Execution) error {
	return p.records.SaveExecution(ctx, execution)
}

func (p *Persistence) Comments(ctx context.Context, workflowID string) ([]*models.Comment, error) {
	return p.records.Comments(ctx, workflowID)
}

func (p *Persistence) SaveComment(ctx context.Context, comment *models.Comment) error {
	return p.records.SaveComment(ctx, comment)
}

func (p *Persistence) TeamMembers(ctx context.Context, workflowID string) ([]*models.TeamMember, error) {
	return p.records.TeamMembers(ctx, workflowID)
}

func (p *Persistence) SaveTeamMember(ctx context.Context, member *models.TeamMember) error {
	return p.records.SaveTeamMember(ctx, member)
}

func (p *Persistence) Activities(ctx context.Context, workflowID string) ([]*models.Activity, error) {
	return p.records.Activities(ctx, workflowID)
}

func (p *Persistence) SaveActivity(ctx context.Context, activity *models.Activity) error {
	return p.records.SaveActivity(ctx, activity)
}
