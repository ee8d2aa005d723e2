// Package file provides file-based persistence implementation for workflows and their collaboration data.
package file

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root           string
	workflowRepo   *WorkflowRepository
	executionRepo  *recordRepository[models.Execution]
	commentRepo    *recordRepository[models.Comment]
	teamRepo       *recordRepository[models.TeamMember]
	activitiesRepo *recordRepository[models.Activity]
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		workflowRepo:   NewWorkflowRepository(cleanRoot),
		executionRepo:  newRecordRepository[models.Execution](cleanRoot, "executions"),
		commentRepo:    newRecordRepository[models.Comment](cleanRoot, "comments"),
		teamRepo:       newRecordRepository[models.TeamMember](cleanRoot, "team"),
		activitiesRepo: newRecordRepository[models.Activity](cleanRoot, "activity"),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return fp.workflowRepo.GetAll(ctx)
}

func (fp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return fp.workflowRepo.GetByID(ctx, id)
}

func (fp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return fp.workflowRepo.Save(ctx, workflow)
}

func (fp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return fp.workflowRepo.Delete(ctx, id)
}

func (fp *Persistence) Executions(_ context.Context, workflowID string) ([]*models.Execution, error) {
	return fp.executionRepo.list(workflowID)
}

func (fp *Persistence) SaveExecution(_ context.Context, execution *models.Execution) error {
	return fp.executionRepo.append(execution.WorkflowID, execution)
}

func (fp *Persistence) Comments(_ context.Context, workflowID string) ([]*models.Comment, error) {
	return fp.commentRepo.list(workflowID)
}

func (fp *Persistence) SaveComment(_ context.Context, comment *models.Comment) error {
	return fp.commentRepo.append(comment.WorkflowID, comment)
}

func (fp *Persistence) TeamMembers(_ context.Context, workflowID string) ([]*models.TeamMember, error) {
	return fp.teamRepo.list(workflowID)
}

func (fp *Persistence) SaveTeamMember(_ context.Context, member *models.TeamMember) error {
	return fp.teamRepo.append(member.WorkflowID, member)
}

func (fp *Persistence) Activities(_ context.Context, workflowID string) ([]*models.Activity, error) {
	return fp.activitiesRepo.list(workflowID)
}

func (fp *Persistence) SaveActivity(_ context.Context, activity *models.Activity) error {
	return fp.activitiesRepo.append(activity.WorkflowID, activity)
}

// recordRepository keeps one JSON array file per workflow under root/<dir>.
type recordRepository[T any] struct {
	mu  sync.Mutex
	dir string
}

func newRecordRepository[T any](root, dir string) *recordRepository[T] {
	return &recordRepository[T]{dir: root + "/" + dir}
}
