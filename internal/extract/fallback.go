package extract

import (
	"regexp"
	"strings"
)

// Literal patterns applied to the raw page, tried in order per field.
var (
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`<meta\s+property="og:video(?:.*?)"\s+content="([^"]+)"`),
		regexp.MustCompile(`<video.*?src="([^"]+)".*?>`),
	}
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta\s+property="og:title"\s+content="([^"]+)"`),
	}
	ownerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"owner"\s*:\s*\{\s*"username"\s*:\s*"([^"]+)"`),
	}
	thumbnailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta\s+property="og:image(?:.*?)"\s+content="([^"]+)"`),
		regexp.MustCompile(`"display_url"\s*:\s*"([^"]+)"`),
	}
	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"video_duration"\s*:\s*([\d.]+)\s*[,}]`),
	}
)

// Fallback matches literal patterns against the raw HTML. It is the last
// resort when neither structured data nor meta tags produced anything.
type Fallback struct{}

// Name implements Strategy.
func (Fallback) Name() string { return "regex" }

// Extract implements Strategy.
func (s Fallback) Extract(doc *Document, current Details) (Details, bool) {
	html := doc.HTML
	candidate := Details{Method: s.Name()}

	if current.VideoURL == "" {
		candidate.VideoURL = unescapeURL(firstMatch(html, videoURLPatterns))
	}
	if current.Title == "" {
		candidate.Title = firstMatch(html, titlePatterns)
	}
	if current.Author == "" {
		title := current.Title
		if title == "" {
			title = candidate.Title
		}
		candidate.Author = authorFromTitle(title)
		if candidate.Author == "" {
			candidate.Author = firstMatch(html, ownerPatterns)
		}
	}
	if current.ThumbnailURL == "" {
		candidate.ThumbnailURL = unescapeURL(firstMatch(html, thumbnailPatterns))
	}
	if current.DurationMillis == 0 {
		candidate.DurationMillis = parseDurationMillis(firstMatch(html, durationPatterns))
	}

	return Merge(current, candidate)
}

// firstMatch returns the first capture group of the first pattern that
// matches, with JSON slash escapes removed.
func firstMatch(html string, patterns []*regexp.Regexp) string {
	for _, pat := range patterns {
		if m := pat.FindStringSubmatch(html); m != nil && len(m) > 1 {
			return strings.ReplaceAll(m[1], `\/`, "/")
		}
	}
	return ""
}
