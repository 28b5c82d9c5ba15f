// ABOUTME: token subcommand issuing an operator auth token
// ABOUTME: The token is signed with AUTH_SECRET and works as a bearer header or auth cookie
package cli

import (
	"fmt"
	"time"

	"github.com/harperreed/outreach/config"
	"github.com/harperreed/outreach/web"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an API token for the operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := web.IssueToken(cfg.AuthSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}
