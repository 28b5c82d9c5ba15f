// ABOUTME: stats subcommand printing the outreach dashboard
// ABOUTME: Uses the same aggregator as the HTTP stats route
package cli

import (
	"fmt"

	"github.com/harperreed/outreach/stats"
	"github.com/spf13/cobra"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show outreach statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), stats.RenderDashboard(s))
			return nil
		},
	}
}
