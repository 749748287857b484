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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blnkfinance/subsync"
)

func syncCommands(app *subsyncInstance) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "run one reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupSubsync(app); err != nil {
				return err
			}
			defer app.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			run, err := app.sync.Run(ctx, subsync.RunOptions{DryRun: dryRun})
			if run != nil {
				fmt.Printf("run %s %s: %d pages, %d records, %d created, %d churned, %d skipped, %d sink failures\n",
					run.RunID, run.Status, run.Pages, run.RecordsSeen, run.Created, run.Churned, run.Skipped, run.SinkFailures)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and classify without calling the sink or writing the ledger")
	return cmd
}
