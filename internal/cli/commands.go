package cli

import (
	"github.com/spf13/cobra"

	"github.com/garyjia/caseflow/internal/config"

	"github.com/garyjia/caseflow/internal/domain/flow"
)

func snapshotCmd(opts *rootOptions) *cobra.Command {
	var assignee string
	var local bool

	cmd := &cobra.Command{
		Use:   "snapshot <case-id>",
		Short: "Search a case hierarchy once for active work items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if local {
				items, err := s.container.Services().Item.ListActive(cmd.Context(), args[0], flow.AssignedTo(assignee))
				if err != nil {
					return err
				}
				renderLocalItems(cmd.OutOrStdout(), args[0], items)
				return nil
			}

			snapshot, err := s.container.Services().Flow.SearchOnce(cmd.Context(), args[0], flow.AssignedTo(assignee))
			if err != nil {
				return err
			}

			renderSnapshot(cmd.OutOrStdout(), args[0], snapshot, opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "only consider items assigned to this user")
	cmd.Flags().BoolVar(&local, "local", false, "list the case's own active items without walking its ancestors")
	return cmd
}

func nextCmd(opts *rootOptions) *cobra.Command {
	var assignee string
	var timeout int

	cmd := &cobra.Command{
		Use:   "next <case-id>",
		Short: "Wait for the next work items of a case",
		Long: `Polls the case hierarchy until an active work item appears, the root
case completes, or the timeout elapses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("timeout") {
				timeout = s.defaultTimeout
			}

			outcome, err := s.container.Services().Flow.ResolveNext(cmd.Context(), args[0], flow.AssignedTo(assignee), timeout)
			if err != nil {
				return err
			}

			renderOutcome(cmd.OutOrStdout(), args[0], outcome, opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "only consider items assigned to this user")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "seconds to wait (defaults to flow_to_next.default_timeout)")
	return cmd
}

func completeCmd(opts *rootOptions) *cobra.Command {
	var flowToNext, ignoreAssignee bool
	var timeout int

	cmd := &cobra.Command{
		Use:   "complete <item-id>",
		Short: "Complete a work item and optionally wait for the next one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("timeout") {
				timeout = s.defaultTimeout
			}

			services := s.container.Services()
			if flowToNext {
				if err := services.Flow.CheckTimeout(timeout); err != nil {
					return err
				}
			}

			item, err := services.Item.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Completed %s (case %s)\n", item.ID, item.CaseID)

			if !flowToNext {
				return nil
			}

			outcome, err := services.Flow.ResolveAfterItem(cmd.Context(), item, ignoreAssignee, timeout)
			if err != nil {
				return err
			}

			renderOutcome(cmd.OutOrStdout(), item.CaseID, outcome, opts.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flowToNext, "flow-to-next", false, "wait for the items following the completed one")
	cmd.Flags().BoolVar(&ignoreAssignee, "ignore-assignee", false, "do not restrict the wait to the item's assignee")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "seconds to wait (defaults to flow_to_next.default_timeout)")
	return cmd
}

func eventsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events <case-id>",
		Short: "List recorded completions and resolutions of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			events, err := s.container.Services().Event.List(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			renderEvents(cmd.OutOrStdout(), events, opts.noColor)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events, newest first")
	return cmd
}

func configCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration after defaults and overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			return renderConfig(cmd.OutOrStdout(), cfg)
		},
	}
}
