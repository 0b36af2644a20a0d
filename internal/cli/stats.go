package cli

import (
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Statistics commands",
	}

	cmd.AddCommand(newStatsOpponentsCmd())
	cmd.AddCommand(newStatsOverallCmd())

	return cmd
}

func newStatsOpponentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opponents",
		Short: "Per-opponent win/loss breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result OpponentStatsResult

			if err := client.Get("/api/v1/stats/opponents", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newStatsOverallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overall",
		Short: "Overall wins, losses and draws",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result OverallStats

			if err := client.Get("/api/v1/stats/overall", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
