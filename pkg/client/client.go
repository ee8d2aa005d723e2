// Package client talks to the flowdesk REST API. It backs both the workflow
// collection and the builder when they run against a remote server.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/otelhelper"
)

var tracer = otelhelper.Tracer("flowdesk/client")

var (
	// ErrUnauthorized is returned when the server rejects the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response decoded from its problem document.
type APIError struct {
	StatusCode int    `json:"status"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}

	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	expired    atomic.Bool
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:9091.
func New(baseURL, token string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, option := range options {
		option(c)
	}

	c.logger = c.logger.With("module", "client")

	return c
}

// Valid reports whether the session can still be used. A 401 from the server
// invalidates it for the lifetime of the client.
func (c *Client) Valid() bool {
	return !c.expired.Load()
}

func (c *Client) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	var workflows []*models.Workflow

	err := c.do(ctx, http.MethodGet, "/api/workflows", nil, &workflows)
	if err != nil {
		return nil, err
	}

	return workflows, nil
}

func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := c.do(ctx, http.MethodGet, "/api/workflows/"+url.PathEscape(id), nil, &workflow)
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *Client) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	var created models.Workflow

	err := c.do(ctx, http.MethodPost, "/api/workflows", workflow, &created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) UpdateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	var updated models.Workflow

	err := c.do(ctx, http.MethodPut, "/api/workflows/"+url.PathEscape(workflow.ID), workflow, &updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/workflows/"+url.PathEscape(id), nil, nil)
}

// Analytics fetches the analytics of one workflow, or the global view when id is empty.
func (c *Client) Analytics(ctx context.Context, id string, timeRange models.TimeRange) (*models.Analytics, error) {
	path := "/api/workflows/analytics"
	if id != "" {
		path = "/api/workflows/" + url.PathEscape(id) + "/analytics"
	}

	if timeRange != "" {
		path += "?timeRange=" + url.QueryEscape(string(timeRange))
	}

	var analytics models.Analytics

	err := c.do(ctx, http.MethodGet, path, nil, &analytics)
	if err != nil {
		return nil, err
	}

	return &analytics, nil
}

func (c *Client) Comments(ctx context.Context, id string) ([]*models.Comment, error) {
	var comments []*models.Comment

	err := c.do(ctx, http.MethodGet, "/api/workflows/"+url.PathEscape(id)+"/comments", nil, &comments)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, id, author, body string) (*models.Comment, error) {
	var comment models.Comment

	request := map[string]string{"author": author, "body": body}

	err := c.do(ctx, http.MethodPost, "/api/workflows/"+url.PathEscape(id)+"/comments", request, &comment)
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

func (c *Client) TeamMembers(ctx context.Context, id string) ([]*models.TeamMember, error) {
	var members []*models.TeamMember

	err := c.do(ctx, http.MethodGet, "/api/workflows/"+url.PathEscape(id)+"/team", nil, &members)
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (c *Client) Catalog(ctx context.Context) (*models.Catalog, error) {
	var catalog models.Catalog

	err := c.do(ctx, http.MethodGet, "/api/catalog", nil, &catalog)
	if err != nil {
		return nil, err
	}

	return &catalog, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := otelhelper.StartSpan(ctx, tracer, "client.request",
		attribute.String("http.request.method", method),
		attribute.String("url.path", path))
	defer span.End()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("http request failed: %w", err)
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		otelhelper.SetError(span, apiErr)

		if resp.StatusCode == http.StatusUnauthorized {
			c.expired.Store(true)
		}

		c.logger.DebugContext(ctx, "API request failed", "method", method, "path", path, "status", resp.StatusCode)

		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, apiErr)
	}

	apiErr.StatusCode = resp.StatusCode

	return apiErr
}
