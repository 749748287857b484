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

	"github.com/spf13/cobra"
)

func ledgerCommands(app *subsyncInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "inspect and repair the reconciliation ledger",
	}

	cmd.AddCommand(ledgerListCommand(app))
	cmd.AddCommand(ledgerGetCommand(app))
	cmd.AddCommand(ledgerDeleteCommand(app))
	return cmd
}

func ledgerListCommand(app *subsyncInstance) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupSubsync(app); err != nil {
				return err
			}
			defer app.close()

			entries, err := app.sync.ListLedgerEntries(context.Background(), limit, offset)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SUBSCRIPTION\tCANCELLED")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%t\n", entry.ID, entry.Cancelled)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of entries to skip")
	return cmd
}

func ledgerGetCommand(app *subsyncInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "get <subscription-id>",
		Short: "show the ledger entry of a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupSubsync(app); err != nil {
				return err
			}
			defer app.close()

			entry, err := app.sync.GetLedgerEntry(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(entry)
		},
	}
}

func ledgerDeleteCommand(app *subsyncInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <subscription-id>",
		Short: "forget a subscription so the next sync forwards it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupSubsync(app); err != nil {
				return err
			}
			defer app.close()

			if err := app.sync.ResetLedgerEntry(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted ledger entry %s\n", args[0])
			return nil
		},
	}
}
