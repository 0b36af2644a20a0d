package cli

import (
	"github.com/spf13/cobra"
)

func newBadgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "Show current badge counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Badges

			if err := client.Get("/api/v1/badges", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
