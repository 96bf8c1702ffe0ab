package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"instatrack/internal/player"
	"instatrack/internal/source"
	"instatrack/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Resolve a post or reel URL and play it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  playRun,
}

func playRun(cmd *cobra.Command, args []string) error {
	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		var err error
		id, err = ui.Input("Instagram URL")
		if err != nil {
			return fmt.Errorf("no URL provided")
		}
	}

	mgr := newManager()
	defer mgr.Shutdown()

	return resolveAndPlay(cmd.Context(), mgr, id)
}

// resolveAndPlay looks id up and hands the track to the configured player.
func resolveAndPlay(ctx context.Context, mgr *source.Manager, id string) error {
	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	l := resolveAll(ctx, mgr, []string{id}, 1)[0]
	if reportFailure(l) {
		if l.err != nil {
			return l.err
		}
		return nil
	}

	store, err := openHistory()
	if err != nil {
		logger.Sugar().Warnf("history unavailable: %v", err)
	}
	if store != nil {
		defer store.Close()
	}
	remember(ctx, store, l.res)

	logger.Sugar().Debugf("playing %s with %s", l.res.Track.PlaybackURL, p.Name())
	if err := p.Play(ctx, l.res.Track); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}
