// Package workspace ties the workflow collection to the builder: it tracks which view is
// active and routes saved workflows back into the collection.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukex/flowdesk/pkg/builder"
	"github.com/dukex/flowdesk/pkg/collection"
	"github.com/dukex/flowdesk/pkg/models"
)

type View string

const (
	ViewList    View = "list"
	ViewBuilder View = "builder"
)

// Workspace owns the active view and at most one open builder.
type Workspace struct {
	mu      sync.Mutex
	store   *collection.Store
	config  builder.Config
	view    View
	builder *builder.Builder
}

// New creates a workspace showing the list. The builder config is used for every builder the
// workspace opens; its OnSave is chained after the collection update.
func New(store *collection.Store, config builder.Config) *Workspace {
	return &Workspace{
		store:  store,
		config: config,
		view:   ViewList,
	}
}

func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.view
}

// Builder returns the open builder, or nil on the list view.
func (w *Workspace) Builder() *builder.Builder {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.builder
}

// Load refreshes the collection.
func (w *Workspace) Load(ctx context.Context) (*collection.Result, error) {
	return w.store.Load(ctx)
}

func (w *Workspace) Workflows(query string) []*models.Workflow {
	return w.store.Filter(query)
}

// Create opens a builder on a new, empty workflow.
func (w *Workspace) Create() *builder.Builder {
	return w.open(nil)
}

// Edit opens a builder on a copy of an existing workflow.
func (w *Workspace) Edit(id string) (*builder.Builder, error) {
	workflow, ok := w.store.Workflow(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", collection.ErrWorkflowNotFound, id)
	}

	return w.open(workflow), nil
}

func (w *Workspace) Delete(ctx context.Context, id string) error {
	return w.store.Delete(ctx, id)
}

// Cancel discards the open builder and returns to the list.
func (w *Workspace) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.builder = nil
	w.view = ViewList
}

func (w *Workspace) open(workflow *models.Workflow) *builder.Builder {
	config := w.config
	onSave := config.OnSave

	// A local- workflow comes back from its first successful save under a server id.
	var previousID string
	if workflow != nil {
		previousID = workflow.ID
	}

	config.OnSave = func(ctx context.Context, saved *models.Workflow) {
		w.store.Replace(ctx, previousID, saved)
		previousID = saved.ID
		w.Cancel()

		if onSave != nil {
			onSave(ctx, saved)
		}
	}

	opened := builder.New(workflow, config)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.builder = opened
	w.view = ViewBuilder

	return opened
}
