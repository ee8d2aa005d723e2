package postgresql_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
	"github.com/dukex/flowdesk/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflow_activities", "workflow_team_members", "workflow_comments", "workflow_executions", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres tests in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("flowdesk_test"),
			postgres.WithUsername("flowdesk"),
			postgres.WithPassword("flowdesk"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func TestPersistence_WorkflowLifecycle(t *testing.T) {
	p, ctx := setupTestDB(t)

	workflow := &models.Workflow{
		ID:          "wf-1",
		Name:        "Renewal reminder",
		Description: "Remind owners 30 days before renewal",
		Status:      models.WorkflowStatusActive,
		Trigger:     &models.Trigger{Type: "schedule", Name: "Schedule", Config: map[string]any{"cron": "@daily"}},
		Steps: []*models.WorkflowStep{
			{ID: "s1", Type: models.StepTypeTask, Config: models.TaskConfig{Title: "Call customer", Priority: "high"}, Position: 0},
		},
		UpdatedAt: "2024-02-01T00:00:00Z",
	}

	require.NoError(t, p.SaveWorkflow(ctx, workflow))

	loaded, err := p.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Renewal reminder", loaded.Name)
	assert.Equal(t, "schedule", loaded.Trigger.Type)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, models.TaskConfig{Title: "Call customer", Priority: "high"}, loaded.Steps[0].Config)
	assert.True(t, workflow.UpdatedTime().Equal(loaded.UpdatedTime()))

	loaded.Name = "Renewal reminder v2"
	require.NoError(t, p.SaveWorkflow(ctx, loaded))

	all, err := p.Workflows(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Renewal reminder v2", all[0].Name)

	require.NoError(t, p.DeleteWorkflow(ctx, "wf-1"))

	_, err = p.WorkflowByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.DeleteWorkflow(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_Records(t *testing.T) {
	p, ctx := setupTestDB(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, p.SaveExecution(ctx, &models.Execution{ID: "e1", WorkflowID: "wf-1", Status: models.ExecutionStatusSuccess, DurationMs: 40, StartedAt: now}))
	require.NoError(t, p.SaveExecution(ctx, &models.Execution{ID: "e2", WorkflowID: "wf-2", Status: models.ExecutionStatusFailed, DurationMs: 60, StartedAt: now}))
	require.NoError(t, p.SaveComment(ctx, &models.Comment{ID: "c1", WorkflowID: "wf-1", Author: "ana", Body: "ship it", CreatedAt: now}))
	require.NoError(t, p.SaveTeamMember(ctx, &models.TeamMember{ID: "m1", WorkflowID: "wf-1", Name: "Ana", Email: "ana@example.com", Role: models.TeamRoleEditor}))
	require.NoError(t, p.SaveActivity(ctx, &models.Activity{ID: "a1", WorkflowID: "wf-1", Kind: "workflow.saved", Message: "saved", CreatedAt: now}))

	scoped, err := p.Executions(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	all, err := p.Executions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	comments, err := p.Comments(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "ship it", comments[0].Body)

	team, err := p.TeamMembers(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, team, 1)

	activities, err := p.Activities(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, activities, 1)
}

func TestNewPersistence_UnreachableDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := postgresql.NewPersistence(ctx, logger, "postgres://flowdesk@127.0.0.1:1/flowdesk?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}
