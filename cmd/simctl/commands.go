package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autovolt/lakehouse/internal/app"
	"github.com/autovolt/lakehouse/internal/orchestrator"
)

func (c *cli) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one incremental or backfill run",
		Example: `  simctl run
  simctl run --steps 6
  simctl run --mode backfill --start 2022-01-01 --end 2022-12-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := orchestrator.Params{
				Mode:  c.v.GetString("mode"),
				Start: c.v.GetString("start"),
				End:   c.v.GetString("end"),
				Steps: c.v.GetString("steps"),
			}

			return c.withApp(cmd.Context(), func(a *app.App) error {
				req, err := a.ParseRequest(params)
				if err != nil {
					return err
				}
				summary, err := a.Runner.Run(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary.String())
				return nil
			})
		},
	}

	cmd.Flags().String("mode", string(orchestrator.Incremental), "incremental or backfill")
	cmd.Flags().String("start", "", "first backfill day (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last backfill day (YYYY-MM-DD)")
	cmd.Flags().String("steps", "", "hourly steps of an incremental run (1-24)")
	c.bind(cmd.Flags(), "mode", "start", "end", "steps")
	return cmd
}

func (c *cli) stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the persisted simulation state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the state document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				st, err := a.States.Load(cmd.Context())
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(st, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	})
	return cmd
}

func (c *cli) tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage warehouse tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create every bronze table that does not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if a.Sink == nil {
					return errors.New("no warehouse configured")
				}
				if err := a.Sink.EnsureAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "tables ensured")
				return nil
			})
		},
	})
	return cmd
}
