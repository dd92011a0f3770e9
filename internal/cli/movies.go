package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRefreshMoviesCmd re-ingests every movie from the metadata source.
func NewRefreshMoviesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-movies",
		Short: "Refresh rating, votes and score of every movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()
			return svc.catalog.RefreshAll(cmd.Context())
		},
	}
}

// NewRankingCmd prints the current leaderboard as JSON.
func NewRankingCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ranking",
		Short: "Print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()
			entries, err := svc.ranking.Ranking(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
