// Package main provides the flowdesk command line client.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "flowdesk",
		Usage:                 "Build and manage CRM workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the flowdesk API",
				Value:   "http://localhost:9091",
				Sources: cli.EnvVars("FLOWDESK_API_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token for the API",
				Sources: cli.EnvVars("FLOWDESK_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "cache-url",
				Usage:   "Local cache (memory://, file://path, redis://host:port/db)",
				Value:   defaultCacheURL(),
				Sources: cli.EnvVars("FLOWDESK_CACHE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			syncCommand(),
			createCommand(),
			deleteCommand(),
			overviewCommand(),
			commentCommand(),
			catalogCommand(),
		},
	}
}
