package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"instatrack/internal/httputil"
	"instatrack/internal/source"
	"instatrack/internal/stream"
)

var flagOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <url>...",
	Short: "Download the media of post or reel URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  downloadRun,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory (default: download_dir from config)")
	downloadCmd.Flags().IntVar(&flagJobs, "jobs", 4, "Maximum concurrent lookups")
}

func downloadRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir := flagOutput
	if dir == "" {
		var err error
		dir, err = cfg.ExpandDownloadDir()
		if err != nil {
			return fmt.Errorf("resolving download dir: %w", err)
		}
	}

	mgr := newManager()
	defer mgr.Shutdown()

	store, err := openHistory()
	if err != nil {
		logger.Sugar().Warnf("history unavailable: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	streamer := stream.New(mgr.SourceName(), httputil.NewClient(0))

	failed := 0
	for _, l := range resolveAll(ctx, mgr, args, flagJobs) {
		if reportFailure(l) {
			if l.err != nil {
				failed++
			}
			continue
		}
		remember(ctx, store, l.res)
		if l.res.Kind != source.Resolved {
			continue
		}

		path, err := stream.Download(ctx, streamer, l.res.Track, dir)
		if err != nil {
			logger.Error("Download failed", zap.String("url", l.input), zap.Error(err))
			failed++
			continue
		}
		fmt.Fprintf(os.Stderr, "Downloaded: %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(args))
	}
	return nil
}
