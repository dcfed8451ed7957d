// Package cli wires the tripboard command tree.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trip-board/backend/internal/config"
	"github.com/trip-board/backend/internal/logging"
)

// version is set at build time via -ldflags "-X .../internal/cli.version=x.y.z".
var version = "dev"

// App carries the state shared by all subcommands.
type App struct {
	EnvFile string

	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCmd builds the tripboard command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tripboard",
		Short:        "Trip itinerary board and trip API",
		Version:      version,
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the trip API from SQLite
  tripboard api --data ./data

  # Load destinations, offers and points
  tripboard seed catalog.yaml --data ./data

  # Serve the board against the trip API
  tripboard serve --addr :8099
`),
	}

	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", "", "Load settings from this .env file (default: ./.env if present)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.logger != nil {
			app.logger.Sync()
		}
	}

	cmd.AddCommand(
		newServeCmd(app),
		newAPICmd(app),
		newSeedCmd(app),
		newTokenCmd(app),
		newHealthCmd(app),
	)

	return cmd
}

func (a *App) setup() error {
	var files []string
	if a.EnvFile != "" {
		files = append(files, a.EnvFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LoggerLevel,
		Format:     cfg.LoggerFormat,
		OutputPath: cfg.LoggerOutputPath,
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
