package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trip-board/backend/internal/auth"
)

func newTokenCmd(app *App) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token signed with TRIP_API_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.TripAPISecret == "" {
				return errors.New("TRIP_API_SECRET is not set")
			}

			token, err := auth.IssueToken([]byte(app.cfg.TripAPISecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "trip-board", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (0 means no expiry)")
	return cmd
}
