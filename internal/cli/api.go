package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/api"
	"github.com/trip-board/backend/internal/storage"
)

func newAPICmd(app *App) *cobra.Command {
	var addr, dataDir string

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Serve the trip API backed by SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				app.cfg.APIAddr = addr
			}
			if cmd.Flags().Changed("data") {
				app.cfg.DataDir = dataDir
			}
			return runAPI(cmd.Context(), app)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8098", "HTTP server address (overrides API_ADDR)")
	cmd.Flags().StringVar(&dataDir, "data", "/data", "Data directory for the SQLite database (overrides DATA_DIR)")
	return cmd
}

func runAPI(ctx context.Context, app *App) error {
	cfg := app.cfg
	logger := app.logger.Logger

	db, err := openDatabase(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.TripAPISecret == "" {
		logger.Warn("TRIP_API_SECRET is not set; the trip API accepts unauthenticated requests")
	}

	router := api.NewTripAPIRouter(api.TripAPIDeps{
		DB:      db,
		Secret:  []byte(cfg.TripAPISecret),
		Origins: cfg.CORSOrigins,
		Logger:  logger,
	})

	return listenAndServe(ctx, cfg.APIAddr, router, logger)
}

// openDatabase opens the SQLite file in dataDir and brings its schema up to date.
func openDatabase(dataDir string, logger *zap.Logger) (*storage.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", dataDir, err)
	}

	db, err := storage.OpenInDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := storage.RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("Database ready", zap.String("path", db.Path()))
	return db, nil
}
