package cmd

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/profile-stats/internal/config"
	"github.com/naka-gawa/profile-stats/internal/domain"
	"github.com/naka-gawa/profile-stats/internal/gateway"
	"github.com/naka-gawa/profile-stats/internal/usecase"
)

// addCollectFlags registers the flags shared by every command that collects stats.
func addCollectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Target GitHub user name (required unless set in the config file)")
	cmd.Flags().IntP("limit", "l", domain.DefaultLanguageLimit, "Number of languages to keep in the ranking")
	cmd.Flags().Bool("include-forks", false, "Count languages of forked repositories")
	cmd.Flags().Int("concurrency", gateway.DefaultConcurrency, "Number of repositories fetched in parallel")
	cmd.Flags().Duration("timeout", 60*time.Second, "Timeout for all GitHub requests")
}

// newLogger returns a logger that discards everything unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
	}
	return logger
}

// loadConfig reads the configuration file and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.User, _ = flags.GetString("user")
	}
	if flags.Changed("limit") {
		cfg.Stats.LanguageLimit, _ = flags.GetInt("limit")
	}
	if flags.Changed("include-forks") {
		cfg.Stats.IncludeForks, _ = flags.GetBool("include-forks")
	}
	if flags.Changed("concurrency") {
		cfg.Fetch.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout, _ = flags.GetDuration("timeout")
	}

	if cfg.User == "" {
		return nil, errors.New("a user must be given with --user or in the config file")
	}
	return cfg, nil
}

// collect fetches the raw data of the configured user and computes the profile stats.
func collect(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) (*domain.ProfileStats, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, errors.New("GITHUB_TOKEN environment variable is not set")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Fetch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Fetch.Timeout)
		defer cancel()
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(token, cfg.Fetch.Concurrency, logger)
	if err != nil {
		return nil, err
	}
	aggregator := usecase.NewAggregator(githubGateway, logger)
	return aggregator.Aggregate(ctx, cfg.User, usecase.Options{
		LanguageLimit: cfg.Stats.LanguageLimit,
		IncludeForks:  cfg.Stats.IncludeForks,
	})
}
