package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowdesk/pkg/builder"
	"github.com/dukex/flowdesk/pkg/cache"
	"github.com/dukex/flowdesk/pkg/client"
	"github.com/dukex/flowdesk/pkg/collection"
	"github.com/dukex/flowdesk/pkg/log"
	"github.com/dukex/flowdesk/pkg/workspace"
)

// app is what every subcommand works with: the API client, the local cache and
// the workspace built on both.
type app struct {
	out       io.Writer
	logger    *slog.Logger
	client    *client.Client
	cache     cache.Store
	store     *collection.Store
	workspace *workspace.Workspace
}

func defaultCacheURL() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "memory://"
	}

	return "file://" + filepath.Join(dir, "flowdesk", "cache.json")
}

func newApp(ctx context.Context, command *cli.Command) (*app, error) {
	out := command.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	errOut := command.Root().ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}

	logger := log.New(errOut, command.String("log-level"), "text").With("module", "cli")

	store, err := cache.New(ctx, logger, command.String("cache-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	api := client.New(command.String("api-url"), command.String("token"), client.WithLogger(logger))
	workflows := cache.NewWorkflows(store)
	collectionStore := collection.NewStore(workflows, api, logger)

	return &app{
		out:    out,
		logger: logger,
		client: api,
		cache:  store,
		store:  collectionStore,
		workspace: workspace.New(collectionStore, builder.Config{
			Session: api,
			Remote:  api,
			Drafts:  workflows,
			Logger:  logger,
			OnAuthError: func() {
				notice(out, "session expired: run again with a valid --token")
			},
		}),
	}, nil
}

func (a *app) Close() {
	err := a.cache.Close()
	if err != nil {
		a.logger.Error("Failed to close cache", "error", err)
	}
}

// notice prints a non-fatal message in yellow.
func notice(out io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgYellow).Fprintf(out, format+"\n", args...)
}

func success(out io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(out, format+"\n", args...)
}

// withApp opens the app around a subcommand action.
func withApp(action func(ctx context.Context, command *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		a, err := newApp(ctx, command)
		if err != nil {
			return err
		}
		defer a.Close()

		return action(ctx, command, a)
	}
}
