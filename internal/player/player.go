// Package player launches external media players for resolved tracks.
// All player invocations use exec.Command with explicit argument slices;
// no shell ever sees remote data such as titles or URLs.
package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"instatrack/internal/media"
)

// Player plays a resolved track.
type Player interface {
	// Play blocks until the player exits.
	Play(ctx context.Context, t *media.Track) error

	// Name returns the player binary name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// Names lists the supported players.
var Names = []string{"mpv", "vlc", "iina", "celluloid"}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "vlc":
		return &external{name: "vlc", args: vlcArgs}
	case "iina", "celluloid":
		return &external{name: name, args: mpvArgs}
	default:
		return &external{name: "mpv", args: mpvArgs}
	}
}

// referrer returns the Referer the CDN expects for t, if any.
func referrer(t *media.Track) string {
	if t.SourceName == media.SourceName {
		return "https://www.instagram.com/"
	}
	return ""
}

func mpvArgs(t *media.Track) []string {
	args := []string{
		t.PlaybackURL,
		"--force-media-title=" + t.Author + " - " + t.Title,
		"--really-quiet",
	}
	if ref := referrer(t); ref != "" {
		args = append(args, "--referrer="+ref)
	}
	return args
}

func vlcArgs(t *media.Track) []string {
	args := []string{
		t.PlaybackURL,
		"--meta-title", t.Author + " - " + t.Title,
		"--play-and-exit",
	}
	if ref := referrer(t); ref != "" {
		args = append(args, "--http-referrer", ref)
	}
	return args
}

// external runs a player binary with arguments built per track.
type external struct {
	name string
	args func(*media.Track) []string
}

func (p *external) Name() string { return p.name }

func (p *external) Available() bool {
	_, err := exec.LookPath(p.name)
	return err == nil
}

func (p *external) Play(ctx context.Context, t *media.Track) error {
	cmd := exec.CommandContext(ctx, p.name, p.args(t)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		// Players exit non-zero when the user closes them
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("running %s: %w", p.name, err)
	}
	return nil
}
