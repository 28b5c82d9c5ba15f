// ABOUTME: serve subcommand running the JSON API
// ABOUTME: Shuts down gracefully on SIGINT/SIGTERM and optionally runs the reminder ticker
package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/outreach/web"
	"github.com/spf13/cobra"
)

var errNoAuthSecret = errors.New("AUTH_SECRET is not set; set it or pass --insecure-no-auth for local use")

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		addr           string
		insecureNoAuth bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.AuthSecret == "" {
				if !insecureNoAuth {
					return errNoAuthSecret
				}
				a.logger.Warn("AUTH_SECRET is not set and --insecure-no-auth is on; the API is open")
			}

			server, err := web.NewServer(a.svc, web.Options{
				AuthSecret:     a.cfg.AuthSecret,
				CronSecret:     a.cfg.CronSecret,
				CORSOrigins:    a.cfg.CORSOrigins,
				AIRateLimit:    a.cfg.AIRateLimit,
				Redis:          a.redis,
				InsecureNoAuth: insecureNoAuth,
			}, a.logger)
			if err != nil {
				return err
			}

			if a.cfg.ReminderInterval > 0 {
				a.logger.Info("reminder sweep enabled", "interval", a.cfg.ReminderInterval)
				go a.svc.RunReminders(ctx, a.cfg.ReminderInterval)
			}

			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			return server.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default HTTP_ADDR)")
	cmd.Flags().BoolVar(&insecureNoAuth, "insecure-no-auth", false, "Serve without AUTH_SECRET (local use only)")
	return cmd
}
