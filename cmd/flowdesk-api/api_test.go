package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowdesk/pkg/cmd"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence/file"
)

const testToken = "test-token"

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	eventBus, err := cmd.NewEventBus("gochannel", nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eventBus.Close() })

	api := NewAPI(logger, file.NewPersistence(t.TempDir()), eventBus, testToken)
	require.NoError(t, api.Subscribe(ctx))

	app, err := api.App()
	require.NoError(t, err)

	return app
}

func request(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, body := request(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Flowdesk API", string(body))
}

func TestAPI_Probes(t *testing.T) {
	app := setupTestApp(t)

	for _, path := range []string{"/livez", "/readyz", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAPI_RequiresToken(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/workflows", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CORS(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAPI_ActivityFedByEvents(t *testing.T) {
	app := setupTestApp(t)

	resp, body := request(t, app, http.MethodPost, "/api/workflows",
		`{"name":"Nurture","steps":[{"id":"s1","type":"email"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(body, &workflow))

	resp, body = request(t, app, http.MethodPost, "/api/workflows/"+workflow.ID+"/comments",
		`{"author":"ana","body":"Add an SMS step"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	require.Eventually(t, func() bool {
		resp, body := request(t, app, http.MethodGet, "/api/workflows/"+workflow.ID+"/activity", "")
		if resp.StatusCode != http.StatusOK {
			return false
		}

		var activities []*models.Activity
		if err := json.Unmarshal(body, &activities); err != nil {
			return false
		}

		return len(activities) == 2
	}, 5*time.Second, 25*time.Millisecond)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, ,b:9092"))
	assert.Nil(t, splitBrokers(""))
}
