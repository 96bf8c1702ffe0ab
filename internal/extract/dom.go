package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DOM reads Open Graph meta tags and the first <video> element.
type DOM struct{}

// Name implements Strategy.
func (DOM) Name() string { return "dom" }

// Extract implements Strategy.
func (s DOM) Extract(doc *Document, current Details) (Details, bool) {
	dom, err := doc.DOM()
	if err != nil {
		return current, false
	}

	candidate := Details{Method: s.Name()}

	if current.VideoURL == "" {
		candidate.VideoURL = metaContent(dom, "og:video", "og:video:secure_url")
		if candidate.VideoURL == "" {
			candidate.VideoURL = strings.TrimSpace(dom.Find("video[src]").First().AttrOr("src", ""))
		}
		candidate.VideoURL = unescapeURL(candidate.VideoURL)
	}

	if current.Title == "" {
		candidate.Title = metaContent(dom, "og:title")
	}

	if current.ThumbnailURL == "" {
		candidate.ThumbnailURL = unescapeURL(metaContent(dom, "og:image", "og:image:secure_url"))
	}

	if current.Author == "" {
		title := current.Title
		if title == "" {
			title = candidate.Title
		}
		candidate.Author = authorFromTitle(title)
		if candidate.Author == "" {
			candidate.Author = authorFromDescription(metaContent(dom, "og:description"))
		}
	}

	if current.DurationMillis == 0 {
		candidate.DurationMillis = parseDurationMillis(metaContent(dom, "og:video:duration", "video:duration"))
	}

	return Merge(current, candidate)
}

// metaContent returns the first non-blank content attribute of a meta tag
// whose property or name matches one of keys, in key order.
func metaContent(dom *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			sel := dom.Find(`meta[` + attr + `="` + key + `"]`).First()
			if content := strings.TrimSpace(sel.AttrOr("content", "")); content != "" {
				return content
			}
		}
	}
	return ""
}
