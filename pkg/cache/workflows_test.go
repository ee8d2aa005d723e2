package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowdesk/pkg/cache"
	"github.com/dukex/flowdesk/pkg/models"
)

func TestWorkflows_CollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	workflows := cache.NewWorkflows(cache.NewMemoryStore())

	empty, err := workflows.Collection(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	saved := []*models.Workflow{
		{ID: "1", Name: "Welcome", UpdatedAt: "2024-01-01"},
		{ID: "local-9", Name: "Draft", Steps: []*models.WorkflowStep{
			{ID: "s1", Type: models.StepTypeDelay, Config: models.DelayConfig{Duration: 2, Unit: "days"}},
		}},
	}

	require.NoError(t, workflows.SaveCollection(ctx, saved))

	loaded, err := workflows.Collection(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Welcome", loaded[0].Name)
	assert.Equal(t, models.DelayConfig{Duration: 2, Unit: "days"}, loaded[1].Steps[0].Config)
}

func TestWorkflows_CorruptCollection(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(ctx, cache.CollectionKey, "not json"))

	loaded, err := cache.NewWorkflows(store).Collection(ctx)
	require.ErrorIs(t, err, cache.ErrCorruptEntry)
	assert.Empty(t, loaded)
}

func TestWorkflows_CollectionSkipsNullEntries(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(ctx, cache.CollectionKey, `[null,{"id":"wf-1","name":"Welcome"},null]`))

	loaded, err := cache.NewWorkflows(store).Collection(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "wf-1", loaded[0].ID)

	require.NoError(t, store.Set(ctx, cache.CollectionKey, "null"))

	loaded, err = cache.NewWorkflows(store).Collection(ctx)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestWorkflows_Draft(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	workflows := cache.NewWorkflows(store)

	_, ok, err := workflows.Draft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	draft := &models.Workflow{
		Name: "Lead nurture",
		Steps: []*models.WorkflowStep{
			{ID: "a", Type: models.StepTypeEmail, Config: models.EmailConfig{Subject: "Hi"}, Position: 0},
			{ID: "b", Type: models.StepTypeSMS, Config: models.SMSConfig{Message: "Hey"}, Position: 1},
		},
	}

	require.NoError(t, workflows.SaveDraft(ctx, draft))
	assert.Len(t, draft.Steps, 2, "snapshot must not mutate the caller's workflow")

	header, ok, err := store.Get(ctx, cache.DraftKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, header, `"a"`)

	restored, ok, err := workflows.Draft(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Lead nurture", restored.Name)
	require.Len(t, restored.Steps, 2)
	assert.Equal(t, "b", restored.Steps[1].ID)

	require.NoError(t, workflows.ClearDraft(ctx))

	_, ok, err = workflows.Draft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
