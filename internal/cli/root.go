// Package cli implements the flowctl commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/caseflow/internal/config"
	"github.com/garyjia/caseflow/internal/container"
	"github.com/garyjia/caseflow/pkg/utils"
)

type rootOptions struct {
	configPath string
	noColor    bool
}

// RootCmd returns the flowctl root command with all subcommands attached
func RootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "flowctl",
		Short: "Inspect and wait for the next work items of a case",
		Long: `flowctl reads the caseflow database directly.

It can take a single snapshot of a case hierarchy, wait for the next
work items to appear, or complete a work item and wait for what follows.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(snapshotCmd(opts))
	cmd.AddCommand(nextCmd(opts))
	cmd.AddCommand(completeCmd(opts))
	cmd.AddCommand(eventsCmd(opts))
	cmd.AddCommand(configCmd(opts))

	return cmd
}

// session is an opened container plus the settings commands need
type session struct {
	container      *container.Container
	defaultTimeout int
}

func (o *rootOptions) open(ctx context.Context) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      "warn",
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	return &session{
		container:      c,
		defaultTimeout: cfg.FlowToNext.DefaultTimeoutSeconds(),
	}, nil
}

func (s *session) Close() error {
	return s.container.Close()
}
