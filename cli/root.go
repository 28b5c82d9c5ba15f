// ABOUTME: Root cobra command and the shared application wiring for subcommands
// ABOUTME: Loads config, builds the logger, store, generator and optional redis client
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/harperreed/outreach/config"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/generator"
	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/outreach"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const importLockTTL = 30 * time.Second

type rootOptions struct {
	dbPath string
}

// NewRootCommand builds the outreach command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "outreach",
		Short:         "Track job-search outreach: companies, contacts, emails and follow-ups",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "Database path (default: $XDG_DATA_HOME/outreach/outreach.db)")

	root.AddCommand(
		newServeCommand(opts),
		newMCPCommand(opts, version),
		newImportCommand(opts),
		newFollowUpsCommand(opts),
		newStatsCommand(opts),
		newPortfolioCommand(opts),
		newTokenCommand(),
		newMigrateCommand(opts),
		newReviewCommand(opts),
		newGraphCommand(opts),
	)
	return root
}

// Execute runs the CLI and reports errors on stderr.
func Execute(version string) int {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *db.Store
	svc    *outreach.Service
	redis  redis.UniversalClient
}

// openApp wires the service for one command. logOut receives log lines;
// the mcp command passes stderr so stdout stays a clean transport.
func openApp(ctx context.Context, opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(logOut, cfg.LogLevel, cfg.LogFormat)

	store, err := db.Open(ctx, db.Options{Driver: cfg.DBDriver, Path: cfg.DBPath, URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, store: store}

	var locker importer.KeyLocker
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(redisOpts)
		locker = importer.NewRedisLocker(a.redis, importLockTTL)
	}

	a.svc = outreach.New(store, newGenerator(cfg, logger), importer.New(store, locker, logger), logger)
	logger.Debug("store opened", "driver", cfg.DBDriver, "path", cfg.DBPath)
	return a, nil
}

func newGenerator(cfg *config.Config, logger *slog.Logger) generator.Generator {
	if !cfg.GenerationEnabled() {
		logger.Debug("generation disabled: OPENAI_API_KEY is not set")
		return generator.Disabled{}
	}
	return generator.NewOpenAI(generator.Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.GenerationModel,
		Temperature: cfg.GenerationTemperature,
		MaxTokens:   cfg.GenerationMaxTokens,
		Timeout:     cfg.GenerationTimeout,
	})
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.store.Close()
}
