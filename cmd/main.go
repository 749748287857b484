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
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/subsync"
	"github.com/blnkfinance/subsync/config"
	"github.com/blnkfinance/subsync/database"
	"github.com/blnkfinance/subsync/internal/notification"
	"github.com/blnkfinance/subsync/internal/traces"
)

// notifyFlushTimeout bounds how long the process waits for abort notifications before exiting.
const notifyFlushTimeout = 30 * time.Second

// Subsync represents the CLI application, encapsulating the root Cobra command.
type Subsync struct {
	cmd *cobra.Command
}

// subsyncInstance holds what commands share at runtime. Commands that only need the
// configuration leave sync nil.
type subsyncInstance struct {
	sync       *subsync.Subsync
	datasource database.IDataSource
	cnf        *config.Configuration
	shutdown   func(context.Context) error
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file named by --config.
func loadConfig(app *subsyncInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf
		return nil
	}
}

// setupSubsync opens the ledger and builds the service for commands that need it.
func setupSubsync(app *subsyncInstance) error {
	db, err := database.NewDataSource(app.cnf)
	if err != nil {
		notification.NotifyError(err)
		return fmt.Errorf("error getting datasource: %v", err)
	}

	s, err := subsync.NewSubsync(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("error creating subsync: %v", err)
	}

	app.datasource = db
	app.sync = s
	app.shutdown = func(context.Context) error { return nil }

	if app.cnf.EnableTelemetry {
		shutdown, err := traces.SetupOTelSDK(context.Background(), app.cnf.ProjectName, app.cnf.OtelEndpoint)
		if err != nil {
			logrus.WithError(err).Warn("tracing disabled")
		} else {
			app.shutdown = shutdown
		}
	}
	return nil
}

func (app *subsyncInstance) close() {
	notification.Flush(notifyFlushTimeout)
	if app.shutdown != nil {
		if err := app.shutdown(context.Background()); err != nil {
			logrus.WithError(err).Warn("failed to flush traces")
		}
	}
	if app.sync != nil {
		_ = app.sync.Close()
	}
	if app.datasource != nil {
		_ = app.datasource.Close()
	}
}

// NewCLI creates the command-line interface and registers every subcommand.
func NewCLI() *Subsync {
	var configFile string
	app := &subsyncInstance{}

	rootCmd := &cobra.Command{
		Use:           "subsync",
		Short:         "Reconcile subscriptions from your billing provider into revenue analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./subsync.json", "Configuration file for subsync")
	rootCmd.PersistentPreRunE = loadConfig(app, &configFile)

	rootCmd.AddCommand(syncCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(ledgerCommands(app))
	rootCmd.AddCommand(runsCommands(app))
	rootCmd.AddCommand(configCommands(app))

	return &Subsync{cmd: rootCmd}
}

func (s Subsync) executeCLI() {
	if err := s.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		notification.Flush(notifyFlushTimeout)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
