package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/events"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

// Collaboration manages comments, team membership and the activity feed of a workflow.
type Collaboration struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

func NewCollaboration(
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	validate *validator.Validate,
	logger *slog.Logger,
) *Collaboration {
	return &Collaboration{
		persistence: persistence,
		publisher:   publisher,
		validate:    validate,
		logger:      logger.With("module", "collaboration_service"),
		now:         time.Now,
	}
}

func (c *Collaboration) Comments(ctx context.Context, workflowID string) ([]*models.Comment, error) {
	_, err := c.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return c.persistence.Comments(ctx, workflowID)
}

// AddComment stores a comment and announces it on the event bus.
func (c *Collaboration) AddComment(ctx context.Context, workflowID string, comment *models.Comment) (*models.Comment, error) {
	if comment == nil {
		return nil, NewValidationError("AddComment", "INVALID_REQUEST", "comment is required", ErrInvalidRequest)
	}

	_, err := c.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	err = c.validate.Struct(comment)
	if err != nil {
		return nil, NewValidationError("AddComment", "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	comment.ID = uuid.New().String()
	comment.WorkflowID = workflowID
	comment.CreatedAt = c.now().UTC()

	err = c.persistence.SaveComment(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	publish(ctx, c.publisher, c.logger, workflowID, events.WorkflowCommentAdded{
		BaseEvent: events.NewBaseEvent(events.WorkflowCommentAddedEvent, workflowID),
		CommentID: comment.ID,
		Author:    comment.Author,
	})

	return comment, nil
}

func (c *Collaboration) TeamMembers(ctx context.Context, workflowID string) ([]*models.TeamMember, error) {
	_, err := c.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return c.persistence.TeamMembers(ctx, workflowID)
}

func (c *Collaboration) AddTeamMember(
	ctx context.Context,
	workflowID string,
	member *models.TeamMember,
) (*models.TeamMember, error) {
	if member == nil {
		return nil, NewValidationError("AddTeamMember", "INVALID_REQUEST", "member is required", ErrInvalidRequest)
	}

	_, err := c.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	err = c.validate.Struct(member)
	if err != nil {
		return nil, NewValidationError("AddTeamMember", "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	member.ID = uuid.New().String()
	member.WorkflowID = workflowID

	err = c.persistence.SaveTeamMember(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("failed to save team member: %w", err)
	}

	return member, nil
}

// Activity returns the activity feed of a workflow. Entries of deleted workflows remain readable.
func (c *Collaboration) Activity(ctx context.Context, workflowID string) ([]*models.Activity, error) {
	return c.persistence.Activities(ctx, workflowID)
}
