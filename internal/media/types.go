// Package media defines the resolved track model shared by the resolver,
// the history store and the CLI.
package media

import "math"

// SourceName identifies tracks produced by the Instagram resolver.
const SourceName = "instagram"

// UnknownDuration is the duration reported for tracks whose length could not
// be determined. Such tracks are treated as streams.
const UnknownDuration int64 = math.MaxInt64

// TrackInfo is the descriptive half of a resolved track.
type TrackInfo struct {
	Title          string `json:"title"`
	Author         string `json:"author"`
	DurationMillis int64  `json:"durationMillis"`
	Identifier     string `json:"sourceReferenceUrl"` // Canonical post URL
	IsStream       bool   `json:"isLiveStream"`
	ArtworkURL     string `json:"thumbnailUrl"`
	SourceName     string `json:"sourceName"`
}

// Track is a playable media descriptor: metadata plus the direct media URL.
type Track struct {
	TrackInfo
	PlaybackURL string `json:"playbackUrl"`
}

// HasDuration reports whether the track carries a real duration.
func (t *Track) HasDuration() bool {
	return t.DurationMillis > 0 && t.DurationMillis != UnknownDuration
}

// Clone returns an independent copy of the track.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
