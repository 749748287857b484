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

/*
Package main provides the CLI commands for managing the ledger schema.
Migrations also run automatically whenever the ledger is opened.
*/

package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/subsync/database"
)

func migrateCommands(app *subsyncInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the ledger schema",
	}

	cmd.AddCommand(migrateDirectionCommand(app, "up", "apply pending migrations", migrate.Up))
	cmd.AddCommand(migrateDirectionCommand(app, "down", "roll back every migration", migrate.Down))
	return cmd
}

func migrateDirectionCommand(app *subsyncInstance, use, short string, direction migrate.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, dialect, err := database.ConnectDB(app.cnf.DataSource.Dns)
			if err != nil {
				return fmt.Errorf("error connecting to database: %w", err)
			}
			defer db.Close()

			n, err := database.Migrate(db, dialect, direction)
			if err != nil {
				return err
			}

			if direction == migrate.Up {
				fmt.Printf("Applied %d migrations!\n", n)
			} else {
				fmt.Printf("Rolled back %d migrations!\n", n)
			}
			return nil
		},
	}
}
