// ABOUTME: migrate subcommand applying, rolling back and reporting schema migrations
// ABOUTME: --backup copies the sqlite file first so a bad migration can be undone by hand
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harperreed/outreach/db"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var backup bool
	cmd := &cobra.Command{
		Use:       "migrate up|down|status",
		Short:     "Manage database schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if backup && args[0] != "status" {
				if cfg.DBDriver == db.DriverSQLite {
					path, err := backupDatabase(cfg.DBPath, time.Now())
					if err != nil {
						return err
					}
					if path != "" {
						fmt.Fprintf(out, "Backup created: %s\n", path)
					}
				}
			}

			store, err := db.Open(cmd.Context(), db.Options{
				Driver:         cfg.DBDriver,
				Path:           cfg.DBPath,
				URL:            cfg.DatabaseURL,
				SkipMigrations: true,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			switch args[0] {
			case "up":
				err = store.Migrate(cmd.Context())
			case "down":
				err = store.MigrateDown(cmd.Context())
			}
			if err != nil {
				return err
			}
			version, err := store.MigrationVersion(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Fprintf(out, "Schema version: %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&backup, "backup", false, "Copy the sqlite database before migrating")
	return cmd
}

// backupDatabase copies dbPath next to itself with a timestamp suffix. A
// missing database needs no backup and returns "".
func backupDatabase(dbPath string, now time.Time) (string, error) {
	src, err := os.Open(dbPath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read database: %w", err)
	}
	defer src.Close()

	backupPath := fmt.Sprintf("%s.backup.%s", dbPath, now.Format("20060102-150405"))
	dst, err := os.OpenFile(backupPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, dst.Close()
}
