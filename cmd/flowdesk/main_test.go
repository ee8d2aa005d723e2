package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unreachableAPI = "http://127.0.0.1:1"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	command := newCommand()
	command.Writer = &out
	command.ErrWriter = io.Discard

	err := command.Run(context.Background(), append([]string{"flowdesk"}, args...))

	return out.String(), err
}

func TestCreateOfflineThenList(t *testing.T) {
	cacheURL := "file://" + filepath.Join(t.TempDir(), "cache.json")

	out, err := run(t, "--api-url", unreachableAPI, "--cache-url", cacheURL,
		"create", "--name", "Lead nurture", "--trigger", "lead_created", "--step", "email", "--step", "delay")
	require.NoError(t, err)
	assert.Contains(t, out, "saved locally as local-")

	out, err = run(t, "--api-url", unreachableAPI, "--cache-url", cacheURL, "list", "--filter", "nurture")
	require.NoError(t, err)
	assert.Contains(t, out, "using cached data")
	assert.Contains(t, out, "Lead nurture")
	assert.Contains(t, out, "(local)")

	out, err = run(t, "--api-url", unreachableAPI, "--cache-url", cacheURL, "list", "--filter", "invoice")
	require.NoError(t, err)
	assert.Contains(t, out, "No workflows found")
}

func TestCreateInvalid(t *testing.T) {
	_, err := run(t, "--api-url", unreachableAPI, "--cache-url", "memory://", "create", "--name", "No steps")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one step is required")
}

func TestCreateUnknownStep(t *testing.T) {
	_, err := run(t, "--api-url", unreachableAPI, "--cache-url", "memory://",
		"create", "--name", "Fax", "--step", "fax")
	require.Error(t, err)
}

func TestSyncOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"wf-1","name":"Renewals","status":"active","steps":[],"updatedAt":"2024-06-01T12:00:00Z"}]`))
	}))
	defer server.Close()

	out, err := run(t, "--api-url", server.URL, "--token", "abc", "--cache-url", "memory://", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "synced 1 workflows")
}

func TestSyncInvalidSchedule(t *testing.T) {
	_, err := run(t, "--api-url", unreachableAPI, "--cache-url", "memory://", "sync", "--schedule", "not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "trigger")
	assert.Contains(t, out, "email")
}

func TestCommandsRequireID(t *testing.T) {
	for _, name := range []string{"delete", "overview"} {
		_, err := run(t, "--api-url", unreachableAPI, "--cache-url", "memory://", name)
		require.ErrorIs(t, err, errArgumentRequired, name)
	}
}

func TestOverviewReportsUnavailableParts(t *testing.T) {
	out, err := run(t, "--api-url", unreachableAPI, "--cache-url", "memory://", "overview", "wf-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Analytics")
	assert.Contains(t, out, "unavailable")
}
