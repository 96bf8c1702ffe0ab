package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"instatrack/internal/media"
	"instatrack/internal/source"
	"instatrack/internal/ui"
)

var flagJobs int

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>...",
	Short: "Resolve post or reel URLs into playable tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  resolveRun,
}

func init() {
	resolveCmd.Flags().IntVar(&flagJobs, "jobs", 4, "Maximum concurrent lookups")
}

// lookup is the outcome of resolving one argument.
type lookup struct {
	input string
	res   source.Result
	err   error
}

// resolveAll resolves ids concurrently and returns outcomes in input order.
func resolveAll(ctx context.Context, mgr *source.Manager, ids []string, jobs int) []lookup {
	out := make([]lookup, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, id := range ids {
		g.Go(func() error {
			res, err := mgr.Load(gCtx, id)
			out[i] = lookup{input: id, res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func resolveRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr := newManager()
	defer mgr.Shutdown()

	store, err := openHistory()
	if err != nil {
		logger.Sugar().Warnf("history unavailable: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	lookups := resolveAll(ctx, mgr, args, flagJobs)

	failed := 0
	var tracks []*media.Track
	for _, l := range lookups {
		if l.err != nil {
			failed++
		}
		remember(ctx, store, l.res)
		if l.res.Kind == source.Resolved {
			tracks = append(tracks, l.res.Track)
		}
	}

	if flagJSON {
		if err := writeJSONOut(tracks); err != nil {
			return err
		}
		for _, l := range lookups {
			reportFailure(l)
		}
	} else {
		for _, l := range lookups {
			printLookup(l)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(lookups))
	}
	return nil
}

func writeJSONOut(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLookup(l lookup) {
	if reportFailure(l) {
		return
	}
	if l.res.Kind == source.Resolved {
		printTrack(l.res.Track)
	}
}

// reportFailure writes a line to stderr for anything that did not resolve and
// reports whether it did.
func reportFailure(l lookup) bool {
	switch {
	case l.err != nil:
		msg := l.err.Error()
		var fe *source.FriendlyError
		if errors.As(l.err, &fe) {
			msg = fe.Message
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", ui.ErrorStyle.Render("error"), l.input, msg)
	case l.res.Kind == source.Declined:
		fmt.Fprintf(os.Stderr, "%s %s: not an Instagram post or reel URL\n", ui.MutedStyle.Render("skip"), l.input)
	case l.res.Kind == source.NoTrack:
		fmt.Fprintf(os.Stderr, "%s %s: no track\n", ui.MutedStyle.Render("skip"), l.input)
	default:
		return false
	}
	return true
}

func printTrack(t *media.Track) {
	length := "stream"
	if t.HasDuration() {
		length = (time.Duration(t.DurationMillis) * time.Millisecond).Round(time.Second).String()
	}
	fmt.Printf("%s by %s %s\n  %s\n",
		ui.TitleStyle.Render(t.Title),
		ui.AuthorStyle.Render(t.Author),
		ui.MutedStyle.Render("["+length+"]"),
		t.PlaybackURL)
}
