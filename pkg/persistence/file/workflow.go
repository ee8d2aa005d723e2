package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	mu   sync.RWMutex
	root string // File system root for storing workflows
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return path.Join(wr.root, "workflows")
}

// GetAll returns every stored workflow, oldest first.
func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := strings.TrimSuffix(file, ".json")

		workflow, err := wr.read(workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		if workflow != nil {
			workflows = append(workflows, workflow)
		}
	}

	sort.SliceStable(workflows, func(i, j int) bool {
		left := models.ParseTimestamp(workflows[i].CreatedAt)
		right := models.ParseTimestamp(workflows[j].CreatedAt)

		if left.Equal(right) {
			return workflows[i].ID < workflows[j].ID
		}

		return left.Before(right)
	})

	return workflows, nil
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, workflowID string) (*models.Workflow, error) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()

	workflow, err := wr.read(workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", workflowID, persistence.ErrWorkflowNotFound)
	}

	return workflow, nil
}

func (wr *WorkflowRepository) read(workflowID string) (*models.Workflow, error) {
	if !isSafeID(workflowID) {
		return nil, nil
	}

	filePath := filepath.Clean(path.Join(wr.dir(), workflowID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", workflowID, err)
	}

	return &workflow, nil
}

// Save saves a workflow to the file system. CreatedAt is stamped on first save.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if !isSafeID(workflow.ID) {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, persistence.ErrInvalidWorkflowID)
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.MkdirAll(wr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	if workflow.CreatedAt == "" {
		workflow.CreatedAt = models.FormatTimestamp(time.Now())
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	filePath := path.Join(wr.dir(), workflow.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	if !isSafeID(id) {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	filePath := path.Join(wr.dir(), id+".json")

	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

// isSafeID rejects identifiers that would escape the storage directory.
func isSafeID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
