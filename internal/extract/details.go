package extract

// Details accumulates the fields extracted from a post page. Empty strings
// and a zero duration mean "not found yet".
type Details struct {
	VideoURL       string
	Title          string
	Author         string
	ThumbnailURL   string
	DurationMillis int64
	IsStream       bool
	Method         string // Strategy that first contributed data
}

// NewDetails returns an empty accumulator. Media is treated as a stream until
// a positive duration is found.
func NewDetails() Details {
	return Details{IsStream: true}
}

// Complete reports whether every string field has been filled.
func (d Details) Complete() bool {
	return d.VideoURL != "" && d.Title != "" && d.Author != "" && d.ThumbnailURL != ""
}

// Partial reports whether at least one string field has been filled.
func (d Details) Partial() bool {
	return d.VideoURL != "" || d.Title != "" || d.Author != "" || d.ThumbnailURL != ""
}

// Merge fills the fields of current that are still empty from candidate and
// reports whether anything changed. A field that already has a value is never
// overwritten.
func Merge(current, candidate Details) (Details, bool) {
	changed := false

	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&current.VideoURL, candidate.VideoURL)
	fill(&current.Title, candidate.Title)
	fill(&current.Author, candidate.Author)
	fill(&current.ThumbnailURL, candidate.ThumbnailURL)

	if current.DurationMillis == 0 && candidate.DurationMillis > 0 {
		current.DurationMillis = candidate.DurationMillis
		current.IsStream = false
		changed = true
	}

	if changed && current.Method == "" {
		current.Method = candidate.Method
	}

	return current, changed
}
