// ABOUTME: portfolio subcommand loading profile, projects and skills from YAML
// ABOUTME: Reloading the same file is a no-op
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPortfolioCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage the sender profile and portfolio",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Load profile, projects and skills from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.svc.LoadPortfolio(cmd.Context(), f)
			if err != nil {
				return err
			}
			profile := "skipped"
			if summary.Profile {
				profile = "saved"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %s, %d projects, %d skills\n", profile, summary.Projects, summary.Skills)
			return nil
		},
	})
	return cmd
}
