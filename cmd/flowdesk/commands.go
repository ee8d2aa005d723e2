package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowdesk/pkg/builder"
	"github.com/dukex/flowdesk/pkg/collection"
	"github.com/dukex/flowdesk/pkg/models"
)

var errArgumentRequired = errors.New("workflow id argument is required")

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List workflows, merging the local cache with the server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Case-insensitive match on name or description",
			},
		},
		Action: withApp(func(ctx context.Context, command *cli.Command, a *app) error {
			result, err := a.workspace.Load(ctx)
			if err != nil {
				return err
			}

			if result.Notice != "" {
				notice(a.out, "%s", result.Notice)
			}

			printWorkflows(a, a.workspace.Workflows(command.String("filter")))

			return nil
		}),
	}
}

func printWorkflows(a *app, workflows []*models.Workflow) {
	if len(workflows) == 0 {
		fmt.Fprintln(a.out, "No workflows found")

		return
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTEPS\tUPDATED")

	for _, workflow := range workflows {
		id := workflow.ID
		if workflow.IsLocal() {
			id += " (local)"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", id, workflow.Name, workflow.Status, len(workflow.Steps), workflow.UpdatedAt)
	}

	_ = w.Flush()
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile the local cache with the server, once or on a schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schedule",
				Usage: `Cron spec or descriptor, e.g. "@every 1m"; empty syncs once`,
			},
		},
		Action: withApp(func(ctx context.Context, command *cli.Command, a *app) error {
			schedule := command.String("schedule")
			if schedule == "" {
				return syncOnce(ctx, a)
			}

			return syncScheduled(ctx, a, schedule)
		}),
	}
}

func syncOnce(ctx context.Context, a *app) error {
	result, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	if result.Source == collection.SourceCache {
		notice(a.out, "%s: %d workflows", result.Notice, len(result.Workflows))

		return nil
	}

	success(a.out, "synced %d workflows", len(result.Workflows))

	return nil
}

func syncScheduled(ctx context.Context, a *app, schedule string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := scheduler.AddFunc(schedule, func() {
		err := syncOnce(ctx, a)
		if err != nil {
			a.logger.ErrorContext(ctx, "Sync failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	return nil
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a workflow; it is kept locally when the server is unreachable",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "description"},
			&cli.StringFlag{Name: "trigger", Usage: "Trigger type from the catalog"},
			&cli.StringSliceFlag{Name: "step", Usage: "Step type, repeat for each step in order"},
		},
		Action: withApp(func(ctx context.Context, command *cli.Command, a *app) error {
			_, err := a.workspace.Load(ctx)
			if err != nil {
				return err
			}

			b := a.workspace.Create()

			err = fillBuilder(ctx, b, command)
			if err != nil {
				return err
			}

			saved, err := b.Save(ctx)
			if err != nil {
				return err
			}

			if b.Status() == builder.StatusSavedLocally {
				notice(a.out, "saved locally as %s; run sync once the server is reachable", saved.ID)

				return nil
			}

			success(a.out, "created %s", saved.ID)

			return nil
		}),
	}
}

func fillBuilder(ctx context.Context, b *builder.Builder, command *cli.Command) error {
	err := b.SetName(ctx, command.String("name"))
	if err != nil {
		return err
	}

	err = b.SetDescription(ctx, command.String("description"))
	if err != nil {
		return err
	}

	if triggerType := command.String("trigger"); triggerType != "" {
		catalog, err := models.DefaultCatalog()
		if err != nil {
			return err
		}

		entry, ok := catalog.Trigger(triggerType)
		if !ok {
			return fmt.Errorf("unknown trigger %q", triggerType)
		}

		err = b.SetTrigger(ctx, entry.NewTrigger())
		if err != nil {
			return err
		}
	}

	for _, stepType := range command.StringSlice("step") {
		_, err := b.AddStep(ctx, models.StepType(stepType))
		if err != nil {
			return err
		}
	}

	return nil
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a workflow from the server and the local cache",
		ArgsUsage: "<id>",
		Action: withApp(func(ctx context.Context, command *cli.Command, a *app) error {
			id := command.Args().First()
			if id == "" {
				return errArgumentRequired
			}

			_, err := a.workspace.Load(ctx)
			if err != nil {
				return err
			}

			err = a.workspace.Delete(ctx, id)
			if err != nil {
				return err
			}

			success(a.out, "deleted %s", id)

			return nil
		}),
	}
}

func overviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "overview",
		Usage:     "Show analytics, comments and team of a workflow",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "time-range", Value: string(models.TimeRange7d), Usage: "7d, 30d, 90d or all"},
		},
		Action: withApp(func(ctx context.Context, command *cli.Command, a *app) error {
			id := command.Args().First()
			if id == "" {
				return errArgumentRequired
			}

			timeRange, err := models.ParseTimeRange(command.String("time-range"))
			if err != nil {
				return err
			}

			printOverview(a, a.client.Overview(ctx, id, timeRange))

			return nil
		}),
	}
}

func commentCommand() *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Add a comment to a workflow",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "author", Required: true},
			&cli.StringFlag{Name: "body", Required: true},
		},
		Action: withApp(func(ctx context.Context, command *cli.Command, a *app) error {
			id := command.Args().First()
			if id == "" {
				return errArgumentRequired
			}

			comment, err := a.client.AddComment(ctx, id, command.String("author"), command.String("body"))
			if err != nil {
				return err
			}

			success(a.out, "comment %s added", comment.ID)

			return nil
		}),
	}
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the triggers and actions a workflow can use",
		Action: func(_ context.Context, command *cli.Command) error {
			catalog, err := models.DefaultCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(command.Root().Writer, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "KIND\tTYPE\tNAME\tDESCRIPTION")

			for _, entry := range catalog.Triggers() {
				fmt.Fprintf(w, "trigger\t%s\t%s\t%s\n", entry.Type, entry.Name, entry.Description)
			}

			for _, entry := range catalog.Actions() {
				fmt.Fprintf(w, "action\t%s\t%s\t%s\n", entry.Type, entry.Name, entry.Description)
			}

			return w.Flush()
		},
	}
}
