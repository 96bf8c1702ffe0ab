package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"instatrack/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups, health and metrics over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default: listen from config)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := cfg.Listen
	if flagListen != "" {
		addr = flagListen
	}

	mgr := newManager()
	defer mgr.Shutdown()

	logger.Info("Starting instatrack",
		zap.String("version", Version),
		zap.Int("cache_size", cfg.CacheSize),
		zap.Duration("cache_ttl", cfg.CacheTTL.Duration))

	return server.New(addr, mgr, registry, logger).Start(ctx)
}
