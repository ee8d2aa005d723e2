package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/dukex/flowdesk/pkg/models"
)

const (
	// CollectionKey holds the JSON array of every known workflow.
	CollectionKey = "workflowsCache"
	// DraftKey holds the last edited workflow without its steps.
	DraftKey = "workflowData"
	// DraftStepsKey holds the steps of the last edited workflow.
	DraftStepsKey = "workflowSteps"
)

// ErrCorruptEntry is returned when a cached value cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Workflows reads and writes workflow documents on top of a Store.
type Workflows struct {
	store Store
}

func NewWorkflows(store Store) *Workflows {
	return &Workflows{store: store}
}

// Collection returns the cached collection without null entries. A missing key is an empty
// list. A corrupt value also yields an empty list, together with an error wrapping ErrCorruptEntry.
func (w *Workflows) Collection(ctx context.Context) ([]*models.Workflow, error) {
	raw, ok, err := w.store.Get(ctx, CollectionKey)
	if err != nil {
		return []*models.Workflow{}, err
	}

	if !ok || raw == "" {
		return []*models.Workflow{}, nil
	}

	var workflows []*models.Workflow

	err = json.Unmarshal([]byte(raw), &workflows)
	if err != nil {
		return []*models.Workflow{}, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, CollectionKey, err)
	}

	if workflows == nil {
		return []*models.Workflow{}, nil
	}

	return slices.DeleteFunc(workflows, func(workflow *models.Workflow) bool {
		return workflow == nil
	}), nil
}

func (w *Workflows) SaveCollection(ctx context.Context, workflows []*models.Workflow) error {
	if workflows == nil {
		workflows = []*models.Workflow{}
	}

	data, err := json.Marshal(workflows)
	if err != nil {
		return fmt.Errorf("failed to encode workflows: %w", err)
	}

	return w.store.Set(ctx, CollectionKey, string(data))
}

// SaveDraft snapshots the workflow under DraftKey and its steps under DraftStepsKey.
func (w *Workflows) SaveDraft(ctx context.Context, workflow *models.Workflow) error {
	header := workflow.Clone()
	steps := header.Steps
	header.Steps = nil

	if steps == nil {
		steps = []*models.WorkflowStep{}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode workflow draft: %w", err)
	}

	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to encode workflow steps: %w", err)
	}

	err = w.store.Set(ctx, DraftKey, string(headerJSON))
	if err != nil {
		return err
	}

	return w.store.Set(ctx, DraftStepsKey, string(stepsJSON))
}

// Draft reassembles the last snapshot written by SaveDraft.
func (w *Workflows) Draft(ctx context.Context) (*models.Workflow, bool, error) {
	rawHeader, ok, err := w.store.Get(ctx, DraftKey)
	if err != nil || !ok {
		return nil, false, err
	}

	var workflow models.Workflow

	err = json.Unmarshal([]byte(rawHeader), &workflow)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, DraftKey, err)
	}

	rawSteps, ok, err := w.store.Get(ctx, DraftStepsKey)
	if err != nil {
		return nil, false, err
	}

	workflow.Steps = []*models.WorkflowStep{}

	if ok && rawSteps != "" {
		err = json.Unmarshal([]byte(rawSteps), &workflow.Steps)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, DraftStepsKey, err)
		}
	}

	return &workflow, true, nil
}

// ClearDraft removes both snapshot keys.
func (w *Workflows) ClearDraft(ctx context.Context) error {
	err := w.store.Delete(ctx, DraftKey)
	if err != nil {
		return err
	}

	return w.store.Delete(ctx, DraftStepsKey)
}
