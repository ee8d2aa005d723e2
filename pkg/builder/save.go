package builder

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/otelhelper"
)

var errEmptyResponse = errors.New("remote returned no workflow")

// Save validates the workflow and persists it.
//
// Field errors are checked first: they return ErrValidation and leave the builder editing,
// even without a session. A missing session on a valid workflow moves the builder to AuthExpired, calls OnAuthError once and returns ErrAuthExpired. Neither case
// touches the network. A remote failure is not an error: the workflow is kept locally and
// Status reports StatusSavedLocally. OnSave receives the saved workflow in both outcomes.
func (b *Builder) Save(ctx context.Context) (*models.Workflow, error) {
	b.mu.Lock()

	switch b.state {
	case StateSaving:
		b.mu.Unlock()

		return nil, ErrBusy
	case StateAuthExpired:
		b.mu.Unlock()

		return nil, ErrAuthExpired
	}

	ctx, span := otelhelper.StartSpan(ctx, tracer, "builder.save", b.spanAttributes()...)
	defer span.End()

	b.state = StateValidating
	b.status = ""

	b.errors = ValidateWorkflow(b.workflow)
	if b.errors != nil {
		fieldErrors := b.errors
		b.state = StateEditing
		b.mu.Unlock()

		return nil, fmt.Errorf("%w: %w", ErrValidation, fieldErrors)
	}

	if b.config.Session == nil || !b.config.Session.Valid() {
		b.state = StateAuthExpired
		onAuthError := b.config.OnAuthError
		b.mu.Unlock()

		b.logger.WarnContext(ctx, "Save blocked, session expired")
		otelhelper.SetError(span, ErrAuthExpired)

		if onAuthError != nil {
			onAuthError()
		}

		return nil, ErrAuthExpired
	}

	b.state = StateSaving
	b.workflow.Normalize()
	pending := b.workflow.Clone()
	b.mu.Unlock()

	saved, err := b.persist(ctx, pending)
	if err != nil {
		b.logger.WarnContext(ctx, "Remote save failed, keeping workflow locally", "error", err)
		otelhelper.SetError(span, err)

		saved = b.keepLocally(pending)
	}

	b.mu.Lock()
	b.workflow = saved.Clone()
	b.state = StateEditing

	if err != nil {
		b.status = StatusSavedLocally
	} else {
		b.status = StatusSaved
	}

	b.snapshot(ctx)
	onSave := b.config.OnSave
	b.mu.Unlock()

	if onSave != nil {
		onSave(ctx, saved.Clone())
	}

	return saved, nil
}

func (b *Builder) persist(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow.ID == "" || workflow.IsLocal() {
		create := workflow.Clone()
		create.ID = ""

		saved, err := b.config.Remote.CreateWorkflow(ctx, create)
		if err != nil {
			return nil, fmt.Errorf("failed to create workflow: %w", err)
		}

		if saved == nil {
			return nil, fmt.Errorf("failed to create workflow: %w", errEmptyResponse)
		}

		return saved, nil
	}

	saved, err := b.config.Remote.UpdateWorkflow(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow %s: %w", workflow.ID, err)
	}

	if saved == nil {
		return nil, fmt.Errorf("failed to update workflow %s: %w", workflow.ID, errEmptyResponse)
	}

	return saved, nil
}

// keepLocally stamps a workflow that could not reach the remote. New workflows get a
// local-<unix-millis> id; existing ids are kept so the newer timestamp wins the next merge.
func (b *Builder) keepLocally(workflow *models.Workflow) *models.Workflow {
	now := b.config.Now()

	local := workflow.Clone()
	if local.ID == "" {
		local.ID = models.LocalIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
	}

	local.UpdatedAt = models.FormatTimestamp(now)

	return local
}
