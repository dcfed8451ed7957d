package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trip-board/backend/internal/storage"
)

func newSeedCmd(app *App) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Import destinations, offers and points from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("data") {
				app.cfg.DataDir = dataDir
			}

			seed, err := storage.ReadSeedFile(args[0])
			if err != nil {
				return err
			}

			db, err := openDatabase(app.cfg.DataDir, app.logger.Logger)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := storage.ImportSeed(cmd.Context(), db, seed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d destinations, %d offers, %d points\n",
				res.Destinations, res.Offers, res.Points)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "/data", "Data directory for the SQLite database (overrides DATA_DIR)")
	return cmd
}
