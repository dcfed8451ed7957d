package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/api"
	"github.com/trip-board/backend/internal/api/handlers"
	"github.com/trip-board/backend/internal/board"
	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/remote"
	"github.com/trip-board/backend/internal/trip"
	"github.com/trip-board/backend/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the waypoint board over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				app.cfg.BoardAddr = addr
			}
			if cmd.Flags().Changed("static") {
				app.cfg.StaticDir = staticDir
			}
			return runServe(cmd.Context(), app)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8099", "HTTP server address (overrides BOARD_ADDR)")
	cmd.Flags().StringVar(&staticDir, "static", "./static", "Directory for static frontend files (overrides STATIC_DIR)")
	return cmd
}

func runServe(ctx context.Context, app *App) error {
	cfg := app.cfg
	logger := app.logger.Logger

	logger.Info("Starting trip board", zap.String("version", version), zap.String("trip_api", cfg.TripAPIURL))

	remoteCfg := cfg.Remote()
	if !remoteCfg.HasCredentials() {
		logger.Warn("No TRIP_API_TOKEN or TRIP_API_SECRET set; requests are sent without credentials")
	}
	store := trip.NewStore(remote.NewClient(remoteCfg), logger)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	b := board.New(store, filter.NewModel(), websocket.NewEventBroadcaster(hub), logger,
		board.WithRequestTimeout(cfg.TripAPITimeout),
	)
	defer b.Close()

	var refresh handlers.NextRunner
	scheduler := board.NewScheduler(b, cfg.FutureRefreshSpec, logger)
	if err := scheduler.Start(); err != nil {
		logger.Warn("Failed to start board refresh", zap.Error(err))
	} else {
		defer scheduler.Stop()
		refresh = scheduler
	}

	b.Init(ctx)

	router := api.NewBoardRouter(api.BoardDeps{
		Board:      b,
		Hub:        hub,
		Dispatcher: websocket.NewDispatcher(b, logger),
		Refresh:    refresh,
		Limits: handlers.Limits{
			Rate:  cfg.CommandRate(),
			Burst: cfg.WSCommandBurst,
		},
		Origins:   cfg.CORSOrigins,
		StaticDir: cfg.StaticDir,
		Logger:    logger,
	})

	return listenAndServe(ctx, cfg.BoardAddr, router, logger)
}

// listenAndServe runs server until ctx is done, then shuts it down gracefully.
func listenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
