/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func runsCommands(app *subsyncInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "show the history of sync passes",
	}

	cmd.AddCommand(runsListCommand(app))
	cmd.AddCommand(runsGetCommand(app))
	return cmd
}

func runsListCommand(app *subsyncInstance) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list recent sync passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupSubsync(app); err != nil {
				return err
			}
			defer app.close()

			runs, err := app.sync.ListSyncRuns(context.Background(), limit, offset)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTATUS\tDRY RUN\tSTARTED\tPAGES\tCREATED\tCHURNED\tSKIPPED\tSINK FAILURES")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%d\t%d\t%d\t%d\t%d\n",
					run.RunID, run.Status, run.IsDryRun, run.StartedAt.Format(time.RFC3339),
					run.Pages, run.Created, run.Churned, run.Skipped, run.SinkFailures)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	return cmd
}

func runsGetCommand(app *subsyncInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id>",
		Short: "show a single sync pass, including why it aborted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupSubsync(app); err != nil {
				return err
			}
			defer app.close()

			run, err := app.sync.GetSyncRun(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(run)
		},
	}
}
