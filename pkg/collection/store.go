package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dukex/flowdesk/pkg/cache"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/otelhelper"
)

// NoticeUsingCachedData is reported when the remote fetch fails and the cache is shown instead.
const NoticeUsingCachedData = "using cached data"

var tracer = otelhelper.Tracer("flowdesk/collection")

// ErrWorkflowNotFound is returned by Delete for ids outside the collection.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Remote is the server side of the collection.
type Remote interface {
	ListWorkflows(ctx context.Context) ([]*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

type Source string

const (
	SourceCache  Source = "cache"
	SourceMerged Source = "merged"
)

// Result describes the outcome of a Load.
type Result struct {
	Workflows []*models.Workflow
	Source    Source
	// Notice is a non-fatal message for the user, empty when the remote answered.
	Notice string
}

// Listener receives a copy of the collection every time it is published.
// It runs with the store locked and must not call back into the Store.
type Listener func(workflows []*models.Workflow)

// Store is the single place the workflow collection is mutated.
type Store struct {
	mu        sync.Mutex
	cache     *cache.Workflows
	remote    Remote
	logger    *slog.Logger
	workflows []*models.Workflow
	listeners []Listener
}

func NewStore(workflows *cache.Workflows, remote Remote, logger *slog.Logger) *Store {
	return &Store{
		cache:     workflows,
		remote:    remote,
		logger:    logger.With("module", "collection"),
		workflows: []*models.Workflow{},
	}
}

// OnChange registers a listener called after every publish.
func (s *Store) OnChange(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, listener)
}

// Load publishes the cached collection, then reconciles it with the remote one.
// A remote failure is not an error: the cached list stays and Result.Notice says so.
func (s *Store) Load(ctx context.Context) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, tracer, "collection.load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cached := s.readCache(ctx)
	s.publish(cached)

	remote, err := s.remote.ListWorkflows(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch workflows, using cache", "error", err)
		otelhelper.SetError(span, err)

		span.SetAttributes(attribute.String(otelhelper.SourceKey, string(SourceCache)))

		return &Result{
			Workflows: models.CloneWorkflows(cached),
			Source:    SourceCache,
			Notice:    NoticeUsingCachedData,
		}, nil
	}

	merged := Merge(cached, remote)
	s.publish(merged)

	s.logger.DebugContext(ctx, "Workflows reconciled", "cached", len(cached), "remote", len(remote), "merged", len(merged))
	span.SetAttributes(
		attribute.String(otelhelper.SourceKey, string(SourceMerged)),
		attribute.Int(otelhelper.CountKey, len(merged)),
	)

	return &Result{
		Workflows: models.CloneWorkflows(merged),
		Source:    SourceMerged,
	}, nil
}

// Apply makes a saved workflow authoritative: it replaces the cached entry with the same id
// or appends it, writes the collection back to the cache and mirrors it in memory.
func (s *Store) Apply(ctx context.Context, workflow *models.Workflow) []*models.Workflow {
	return s.Replace(ctx, workflow.ID, workflow)
}

// Replace is Apply for a workflow whose id changed while saving, as when a local-only
// workflow is promoted to a server id. The entry stored under previousID takes the saved
// workflow's place, and no other entry keeps either id.
func (s *Store) Replace(ctx context.Context, previousID string, workflow *models.Workflow) []*models.Workflow {
	_, span := otelhelper.StartSpan(ctx, tracer, "collection.apply",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := workflow.Clone()
	cached := s.readCache(ctx)
	updated := make([]*models.Workflow, 0, len(cached)+1)
	placed := false

	for _, entry := range cached {
		if entry.ID != saved.ID && (previousID == "" || entry.ID != previousID) {
			updated = append(updated, entry)

			continue
		}

		if !placed {
			updated = append(updated, saved)
			placed = true
		}
	}

	if !placed {
		updated = append(updated, saved)
	}

	s.writeCache(ctx, updated)
	s.publish(updated)

	return models.CloneWorkflows(updated)
}

// Delete removes a workflow remotely, then from memory and from the cache.
// Local-only workflows never reach the remote.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := otelhelper.StartSpan(ctx, tracer, "collection.delete",
		attribute.String(otelhelper.WorkflowIDKey, id))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasPrefix(id, models.LocalIDPrefix) {
		err := s.remote.DeleteWorkflow(ctx, id)
		if err != nil {
			otelhelper.SetError(span, err)

			return fmt.Errorf("failed to delete workflow %s: %w", id, err)
		}
	}

	remaining := without(s.workflows, id)
	found := len(remaining) != len(s.workflows)

	cached := s.readCache(ctx)
	if trimmed := without(cached, id); len(trimmed) != len(cached) {
		found = true

		s.writeCache(ctx, trimmed)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}

	s.publish(remaining)

	return nil
}

// Workflows returns a copy of the in-memory collection.
func (s *Store) Workflows() []*models.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.CloneWorkflows(s.workflows)
}

// Workflow returns a copy of one workflow by id.
func (s *Store) Workflow(id string) (*models.Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, workflow := range s.workflows {
		if workflow.ID == id {
			return workflow.Clone(), true
		}
	}

	return nil, false
}

// Filter returns the workflows whose name contains query, ignoring case.
func (s *Store) Filter(query string) []*models.Workflow {
	return Filter(s.Workflows(), query)
}

// Filter keeps the workflows whose name contains query, ignoring case. An empty query keeps all.
func Filter(workflows []*models.Workflow, query string) []*models.Workflow {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return workflows
	}

	matches := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if strings.Contains(strings.ToLower(workflow.Name), needle) {
			matches = append(matches, workflow)
		}
	}

	return matches
}

func (s *Store) readCache(ctx context.Context) []*models.Workflow {
	cached, err := s.cache.Collection(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read workflow cache", "error", err)
	}

	return cached
}

func (s *Store) writeCache(ctx context.Context, workflows []*models.Workflow) {
	err := s.cache.SaveCollection(ctx, workflows)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write workflow cache", "error", err)
	}
}

func (s *Store) publish(workflows []*models.Workflow) {
	s.workflows = models.CloneWorkflows(workflows)

	for _, listener := range s.listeners {
		listener(models.CloneWorkflows(workflows))
	}
}

func without(workflows []*models.Workflow, id string) []*models.Workflow {
	kept := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if workflow.ID != id {
			kept = append(kept, workflow)
		}
	}

	return kept
}
