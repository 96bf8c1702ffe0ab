// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"instatrack/internal/cache"
	"instatrack/internal/config"
	"instatrack/internal/fetch"
	"instatrack/internal/history"
	"instatrack/internal/httputil"
	"instatrack/internal/metrics"
	"instatrack/internal/source"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig    string
	flagPlayer    string
	flagNoHistory bool
	flagJSON      bool
	flagLogLevel  string
	flagDebug     bool
)

var (
	// cfg holds the loaded configuration (merged: defaults < config file < flags).
	cfg *config.Config

	logger   = zap.NewNop()
	registry = prometheus.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "instatrack",
	Short: "Resolve Instagram post and reel URLs into playable tracks",
	Long: `Instatrack turns public Instagram post and reel URLs into playable media
descriptors. Resolve them to JSON, download them, play them with mpv/vlc, or
serve lookups over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/instatrack/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record resolved tracks")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output tracks as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug | info | warn | error")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = buildLogger(cfg.EffectiveLogLevel())
	if err != nil {
		return err
	}
	return nil
}

// buildLogger creates a production logger writing to stderr at level.
func buildLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapLevel)
	zc.OutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

// newManager wires the resolver from the loaded configuration.
func newManager() *source.Manager {
	client := httputil.NewClient(cfg.RequestTimeout.Duration)
	dispatcher := fetch.NewDispatcher(client,
		fetch.WithMaxBodyBytes(cfg.MaxPageBytes),
		fetch.WithLogger(logger),
	)
	return source.NewManager(dispatcher,
		source.WithCache(cache.New(cfg.CacheSize, cfg.CacheTTL.Duration)),
		source.WithMetrics(metrics.New(registry)),
		source.WithLogger(logger),
	)
}

// openHistory opens the history store, or returns nil when history is off.
func openHistory() (*history.Store, error) {
	if !cfg.History {
		return nil, nil
	}
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

// remember records tracks in history, logging rather than failing.
func remember(ctx context.Context, store *history.Store, res source.Result) {
	if store == nil || res.Kind != source.Resolved {
		return
	}
	if err := store.Save(ctx, res.Track); err != nil {
		logger.Warn("Saving history failed", zap.Error(err))
	}
}
