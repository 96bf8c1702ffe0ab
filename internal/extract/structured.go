package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var (
	sharedDataPattern     = regexp.MustCompile(`(?s)<script type="text/javascript">window\._sharedData\s?=\s?(\{.*?\});</script>`)
	additionalDataPattern = regexp.MustCompile(`(?s)<script type="text/javascript">window\.__additionalDataLoaded\('.*?',(\{.*?\})\);</script>`)
)

// Structured reads the JSON blobs Instagram embeds in post pages: the
// window._sharedData bootstrap, the __additionalDataLoaded payload and
// schema.org VideoObject JSON-LD.
type Structured struct{}

// Name implements Strategy.
func (Structured) Name() string { return "structured" }

// Extract implements Strategy. Sources are probed in order until the
// accumulator is complete.
func (s Structured) Extract(doc *Document, current Details) (Details, bool) {
	probes := []func(*Document) (Details, bool){
		fromSharedData,
		fromAdditionalData,
		fromJSONLD,
	}

	found := false
	for _, probe := range probes {
		candidate, ok := probe(doc)
		if !ok {
			continue
		}
		candidate.Method = s.Name()

		var changed bool
		current, changed = Merge(current, candidate)
		found = found || changed
		if current.Complete() {
			break
		}
	}
	return current, found
}

func fromSharedData(doc *Document) (Details, bool) {
	root, ok := scriptJSON(doc.HTML, sharedDataPattern)
	if !ok {
		return Details{}, false
	}

	pages := root.Get("entry_data.PostPage")
	if !pages.IsArray() || len(pages.Array()) == 0 {
		return Details{}, false
	}
	page := pages.Array()[0]

	media := page.Get("graphql.shortcode_media")
	if !media.IsObject() {
		media = page.Get("media")
	}
	if !media.IsObject() {
		return Details{}, false
	}
	return shortcodeMedia(media), true
}

func fromAdditionalData(doc *Document) (Details, bool) {
	root, ok := scriptJSON(doc.HTML, additionalDataPattern)
	if !ok {
		return Details{}, false
	}

	media := root.Get("graphql.shortcode_media")
	if !media.IsObject() {
		media = root.Get("shortcode_media")
	}
	if !media.IsObject() {
		return Details{}, false
	}
	return shortcodeMedia(media), true
}

// shortcodeMedia maps a GraphQL shortcode_media node.
func shortcodeMedia(media gjson.Result) Details {
	d := Details{
		VideoURL:     unescapeURL(stringAt(media, "video_url")),
		ThumbnailURL: unescapeURL(stringAt(media, "display_url")),
		Title:        titleFromCaption(stringAt(media, "edge_media_to_caption.edges.0.node.text")),
		Author:       stringAt(media, "owner.username"),
	}
	if v := media.Get("video_duration"); v.Type == gjson.Number && v.Float() > 0 {
		d.DurationMillis = parseDurationMillis(v.Raw)
	}
	return d
}

func fromJSONLD(doc *Document) (Details, bool) {
	dom, err := doc.DOM()
	if err != nil {
		return Details{}, false
	}

	var payload string
	dom.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, `"@type":"VideoObject"`) ||
			strings.Contains(text, "video_url") ||
			strings.Contains(text, "contentUrl") {
			payload = text
			return false
		}
		return true
	})
	if payload == "" || !gjson.Valid(payload) {
		return Details{}, false
	}

	video, ok := videoObject(gjson.Parse(payload))
	if !ok {
		return Details{}, false
	}

	d := Details{
		VideoURL:     unescapeURL(stringAt(video, "contentUrl")),
		ThumbnailURL: unescapeURL(firstString(video.Get("thumbnailUrl"))),
		Title:        stringAt(video, "name"),
		Author:       stringAt(video, "author.name"),
	}
	if d.Title == "" {
		d.Title = titleFromCaption(stringAt(video, "caption"))
	}
	d.DurationMillis = parseDurationMillis(stringAt(video, "duration"))
	return d, true
}

// videoObject returns the root object, or the first array element, whose
// @type is VideoObject.
func videoObject(root gjson.Result) (gjson.Result, bool) {
	if root.IsArray() {
		for _, item := range root.Array() {
			if isVideoObject(item) {
				return item, true
			}
		}
		return gjson.Result{}, false
	}
	return root, isVideoObject(root)
}

func isVideoObject(r gjson.Result) bool {
	if !r.IsObject() {
		return false
	}
	t, ok := r.Map()["@type"]
	return ok && t.String() == "VideoObject"
}

// scriptJSON pulls the first capture group of pattern out of html and parses
// it. Invalid JSON reads as absent.
func scriptJSON(html string, pattern *regexp.Regexp) (gjson.Result, bool) {
	m := pattern.FindStringSubmatch(html)
	if m == nil || !gjson.Valid(m[1]) {
		return gjson.Result{}, false
	}
	return gjson.Parse(m[1]), true
}

// stringAt returns the trimmed string at path, or "" when the path is missing
// or does not hold a string.
func stringAt(r gjson.Result, path string) string {
	v := r.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// firstString accepts either a string or an array whose first element is a
// string.
func firstString(r gjson.Result) string {
	switch {
	case r.Type == gjson.String:
		return strings.TrimSpace(r.String())
	case r.IsArray():
		items := r.Array()
		if len(items) > 0 && items[0].Type == gjson.String {
			return strings.TrimSpace(items[0].String())
		}
	}
	return ""
}
