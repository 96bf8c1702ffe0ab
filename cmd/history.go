package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"instatrack/internal/config"
	"instatrack/internal/history"
	"instatrack/internal/source"
	"instatrack/internal/ui"
)

var (
	flagHistoryLimit  int
	flagHistoryRemove string
	flagHistoryPick   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, replay or prune resolved tracks",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().StringVar(&flagHistoryRemove, "remove", "", "Remove the entry for this post URL")
	historyCmd.Flags().BoolVarP(&flagHistoryPick, "pick", "p", false, "Pick an entry with fzf and play it")
}

func historyRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// History is readable even when recording is switched off.
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if flagHistoryRemove != "" {
		return store.Remove(ctx, historyKey(flagHistoryRemove))
	}

	entries, err := store.List(ctx, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	if flagJSON {
		tracks := make([]any, len(entries))
		for i, e := range entries {
			tracks[i] = e.Track
		}
		return writeJSONOut(tracks)
	}

	items := history.FormatForDisplay(entries)
	if !flagHistoryPick {
		for i, item := range items {
			fmt.Printf("%s  %s\n", ui.MutedStyle.Render(entries[i].ResolvedAt.Format("2006-01-02 15:04")), item)
		}
		return nil
	}

	idx, err := ui.Select("History", items)
	if err != nil {
		return err
	}

	selected := entries[idx]
	logger.Sugar().Debugf("replaying %s", selected.Track.Identifier)

	store.Close()

	// Playback URLs expire, so look the post up again.
	mgr := newManager()
	defer mgr.Shutdown()
	return resolveAndPlay(ctx, mgr, selected.Track.Identifier)
}

// historyKey maps a pasted post URL to the key its entry is stored under.
func historyKey(id string) string {
	if ref, ok := source.ParseReference(id); ok {
		return ref.URL
	}
	return id
}
