// Package builder implements the Workflow Builder: an editor over one workflow's trigger and
// ordered steps that validates and saves the result.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dukex/flowdesk/pkg/cache"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/otelhelper"
)

var tracer = otelhelper.Tracer("flowdesk/builder")

type State string

const (
	StateEditing     State = "editing"
	StateValidating  State = "validating"
	StateSaving      State = "saving"
	StateAuthExpired State = "auth_expired"
)

const (
	StatusSaved        = "saved"
	StatusSavedLocally = "saved locally"
)

// Session is the ambient authentication state.
type Session interface {
	Valid() bool
}

// Remote persists a single workflow.
type Remote interface {
	CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
}

// Config carries the collaborators of a Builder. Only Remote is required.
type Config struct {
	Session Session
	Remote  Remote
	// Drafts receives a snapshot after every mutation. Nil disables snapshots.
	Drafts *cache.Workflows
	Logger *slog.Logger
	// OnSave receives the saved workflow.
	OnSave func(ctx context.Context, workflow *models.Workflow)
	// OnAuthError is called when Save finds no valid session.
	OnAuthError func()
	Now         func() time.Time
}

type Builder struct {
	mu       sync.Mutex
	config   Config
	logger   *slog.Logger
	workflow *models.Workflow
	state    State
	errors   FieldErrors
	status   string
}

// New opens a builder on a copy of workflow. A nil workflow starts an empty draft.
func New(workflow *models.Workflow, config Config) *Builder {
	if workflow == nil {
		workflow = &models.Workflow{Status: models.WorkflowStatusDraft, Steps: []*models.WorkflowStep{}}
	} else {
		workflow = workflow.Clone()
	}

	if workflow.Steps == nil {
		workflow.Steps = []*models.WorkflowStep{}
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	if config.Now == nil {
		config.Now = time.Now
	}

	return &Builder{
		config:   config,
		logger:   config.Logger.With("module", "builder"),
		workflow: workflow,
		state:    StateEditing,
	}
}

func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Status is the transient message left by the last save.
func (b *Builder) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.status
}

// Errors returns the field errors of the last failed validation.
func (b *Builder) Errors() FieldErrors {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.errors
}

// Workflow returns a copy of the edited workflow with positions re-derived from order.
func (b *Builder) Workflow() *models.Workflow {
	b.mu.Lock()
	defer b.mu.Unlock()

	workflow := b.workflow.Clone()
	workflow.Normalize()

	return workflow
}

// Steps returns a copy of the step list as currently ordered. Positions are left as they are
// until save time.
func (b *Builder) Steps() []*models.WorkflowStep {
	b.mu.Lock()
	defer b.mu.Unlock()

	steps := make([]*models.WorkflowStep, len(b.workflow.Steps))
	for i, step := range b.workflow.Steps {
		steps[i] = step.Clone()
	}

	return steps
}

// AddStep appends a step of the given kind and returns its id.
func (b *Builder) AddStep(ctx context.Context, stepType models.StepType) (string, error) {
	step, err := models.NewStep(stepType)
	if err != nil {
		return "", err
	}

	err = b.mutate(ctx, func(workflow *models.Workflow) error {
		step.Position = len(workflow.Steps)
		workflow.Steps = append(workflow.Steps, step)

		return nil
	})
	if err != nil {
		return "", err
	}

	return step.ID, nil
}

func (b *Builder) RemoveStep(ctx context.Context, id string) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		index := indexOf(workflow.Steps, id)
		if index < 0 {
			return fmt.Errorf("%w: %s", ErrStepNotFound, id)
		}

		workflow.Steps = slices.Delete(workflow.Steps, index, index+1)

		return nil
	})
}

// MoveStep removes the step at dragIndex and reinserts it at hoverIndex.
func (b *Builder) MoveStep(ctx context.Context, dragIndex, hoverIndex int) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		n := len(workflow.Steps)
		if dragIndex < 0 || dragIndex >= n || hoverIndex < 0 || hoverIndex >= n {
			return fmt.Errorf("%w: move %d to %d of %d", ErrIndexOutOfRange, dragIndex, hoverIndex, n)
		}

		if dragIndex == hoverIndex {
			return nil
		}

		step := workflow.Steps[dragIndex]
		workflow.Steps = slices.Delete(workflow.Steps, dragIndex, dragIndex+1)
		workflow.Steps = slices.Insert(workflow.Steps, hoverIndex, step)

		return nil
	})
}

// SetStepConfig replaces the configuration of a step. The config kind must match the step.
func (b *Builder) SetStepConfig(ctx context.Context, id string, config models.StepConfig) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		index := indexOf(workflow.Steps, id)
		if index < 0 {
			return fmt.Errorf("%w: %s", ErrStepNotFound, id)
		}

		step := workflow.Steps[index]
		if config == nil || config.StepType() != step.Type {
			return fmt.Errorf("%w: config does not match %s step", models.ErrInvalidStepConfig, step.Type)
		}

		step.Config = config

		return nil
	})
}

func (b *Builder) SetTrigger(ctx context.Context, trigger *models.Trigger) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		workflow.Trigger = trigger.Clone()

		return nil
	})
}

func (b *Builder) ClearTrigger(ctx context.Context) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		workflow.Trigger = nil

		return nil
	})
}

func (b *Builder) SetName(ctx context.Context, name string) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		workflow.Name = name

		return nil
	})
}

func (b *Builder) SetDescription(ctx context.Context, description string) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		workflow.Description = description

		return nil
	})
}

func (b *Builder) SetStatus(ctx context.Context, status models.WorkflowStatus) error {
	return b.mutate(ctx, func(workflow *models.Workflow) error {
		workflow.Status = status

		return nil
	})
}

// Validate computes the field errors of the current workflow without saving.
func (b *Builder) Validate() FieldErrors {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.errors = ValidateWorkflow(b.workflow)

	return b.errors
}

// Restore replaces the edited workflow with the last cached snapshot, if any.
func (b *Builder) Restore(ctx context.Context) (bool, error) {
	if b.config.Drafts == nil {
		return false, nil
	}

	draft, ok, err := b.config.Drafts.Draft(ctx)
	if err != nil || !ok {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateSaving {
		return false, ErrBusy
	}

	b.workflow = draft

	return true, nil
}

// Resume leaves AuthExpired after the session has been renewed.
func (b *Builder) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateAuthExpired {
		b.state = StateEditing
	}
}

func (b *Builder) mutate(ctx context.Context, change func(workflow *models.Workflow) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateSaving {
		return ErrBusy
	}

	err := change(b.workflow)
	if err != nil {
		return err
	}

	b.snapshot(ctx)

	return nil
}

func (b *Builder) snapshot(ctx context.Context) {
	if b.config.Drafts == nil {
		return
	}

	err := b.config.Drafts.SaveDraft(ctx, b.workflow)
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to write workflow snapshot", "error", err)
	}
}

func indexOf(steps []*models.WorkflowStep, id string) int {
	return slices.IndexFunc(steps, func(step *models.WorkflowStep) bool {
		return step.ID == id
	})
}

func (b *Builder) spanAttributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(otelhelper.WorkflowIDKey, b.workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, b.workflow.Name),
		attribute.Int(otelhelper.StepCountKey, len(b.workflow.Steps)),
	}
}
