package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowdesk/pkg/builder"
	"github.com/dukex/flowdesk/pkg/cache"
	"github.com/dukex/flowdesk/pkg/client"
	"github.com/dukex/flowdesk/pkg/collection"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence/file"
	"github.com/dukex/flowdesk/pkg/services"
	"github.com/dukex/flowdesk/pkg/web"
)

var (
	_ collection.Remote = (*client.Client)(nil)
	_ builder.Remote    = (*client.Client)(nil)
	_ builder.Session   = (*client.Client)(nil)
)

const token = "secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newServer serves the API handlers on a loopback listener and returns its base URL.
func newServer(t *testing.T) string {
	t.Helper()

	logger := testLogger()
	persistence := file.NewPersistence(t.TempDir())
	validate := validator.New(validator.WithRequiredStructEnabled())

	catalog, err := models.DefaultCatalog()
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(persistence, nil, validate, logger),
		services.NewAnalytics(persistence, nil, validate, logger),
		services.NewCollaboration(persistence, nil, validate, logger),
		catalog,
	)

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	api := app.Group("/api")
	api.Use(web.BearerAuth(token))
	handlers.Register(api)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = app.Listener(listener, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + listener.Addr().String()
}

func newWorkflow() *models.Workflow {
	return &models.Workflow{
		Name: "Re-engagement",
		Steps: []*models.WorkflowStep{
			{ID: "s1", Type: models.StepTypeSMS, Config: models.SMSConfig{Message: "We miss you"}},
		},
	}
}

func TestClient_WorkflowRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t), token, client.WithLogger(testLogger()))

	created, err := c.CreateWorkflow(ctx, newWorkflow())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.SMSConfig{Message: "We miss you"}, created.Steps[0].Config)

	created.Name = "Win-back"
	updated, err := c.UpdateWorkflow(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Win-back", updated.Name)

	listed, err := c.ListWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	fetched, err := c.GetWorkflow(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Win-back", fetched.Name)

	require.NoError(t, c.DeleteWorkflow(ctx, created.ID))

	_, err = c.GetWorkflow(ctx, created.ID)
	require.ErrorIs(t, err, client.ErrNotFound)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "workflow_not_found", apiErr.Type)
}

func TestClient_Unauthorized(t *testing.T) {
	c := client.New(newServer(t), "wrong", client.WithLogger(testLogger()))
	assert.True(t, c.Valid())

	_, err := c.ListWorkflows(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, c.Valid())
}

func TestClient_Overview(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t), token, client.WithLogger(testLogger()))

	created, err := c.CreateWorkflow(ctx, newWorkflow())
	require.NoError(t, err)

	_, err = c.AddComment(ctx, created.ID, "ana", "Needs an email fallback")
	require.NoError(t, err)

	overview := c.Overview(ctx, created.ID, models.TimeRange30d)
	require.NoError(t, overview.AnalyticsErr)
	require.NoError(t, overview.CommentsErr)
	require.NoError(t, overview.TeamMembersErr)

	assert.Equal(t, models.TimeRange30d, overview.Analytics.TimeRange)
	assert.Zero(t, overview.Analytics.TotalExecutions)
	require.Len(t, overview.Comments, 1)
	assert.Empty(t, overview.TeamMembers)
}

func TestClient_OverviewPartialFailure(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/api/workflows/wf-1/comments":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"type":"internal_error","status":500,"detail":"boom"}`))
		case r.URL.Path == "/api/workflows/wf-1/team":
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`{"workflowId":"wf-1","timeRange":"7d","totalExecutions":4}`))
		}
	}))
	defer server.Close()

	overview := client.New(server.URL, token).Overview(context.Background(), "wf-1", models.TimeRange7d)

	require.NoError(t, overview.AnalyticsErr)
	assert.Equal(t, 4, overview.Analytics.TotalExecutions)
	require.Error(t, overview.CommentsErr)
	assert.Contains(t, overview.CommentsErr.Error(), "boom")
	require.NoError(t, overview.TeamMembersErr)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_DrivesStoreAndBuilder(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t), token, client.WithLogger(testLogger()))
	workflows := cache.NewWorkflows(cache.NewMemoryStore())
	store := collection.NewStore(workflows, c, testLogger())

	b := builder.New(nil, builder.Config{
		Session: c,
		Remote:  c,
		Drafts:  workflows,
		Logger:  testLogger(),
		OnSave: func(ctx context.Context, saved *models.Workflow) {
			store.Apply(ctx, saved)
		},
	})

	require.NoError(t, b.SetName(ctx, "Onboarding"))
	_, err := b.AddStep(ctx, models.StepTypeEmail)
	require.NoError(t, err)

	saved, err := b.Save(ctx)
	require.NoError(t, err)
	assert.False(t, saved.IsLocal())
	assert.Equal(t, builder.StatusSaved, b.Status())

	result, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.SourceMerged, result.Source)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, saved.ID, result.Workflows[0].ID)
}

func TestClient_TransportError(t *testing.T) {
	c := client.New("http://127.0.0.1:1", token, client.WithHTTPClient(&http.Client{Timeout: time.Second}))

	_, err := c.ListWorkflows(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, client.ErrUnauthorized))
	assert.True(t, c.Valid())
}
