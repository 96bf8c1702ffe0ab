package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/senseyeio/duration"
)

const (
	maxTitleRunes       = 150
	truncatedTitleRunes = 147
	maxBareAuthorLen    = 30
)

var (
	captionLineBreak = regexp.MustCompile(`\r?\n`)

	// "user on Instagram: ..." or "Display Name (@user)".
	authorFromTitlePattern = regexp.MustCompile(`^(.+?)(?:\s+on Instagram:.*|\s*\(@[^)]+\))`)

	// "123 likes, 4 comments - user on March 1, 2024: ..."
	authorFromDescriptionPattern = regexp.MustCompile(`^[\d.,KkMm]+\s+likes?,\s*[\d.,KkMm]+\s+comments?\s+-\s+(\S+)\s+on\b`)

	urlEscapes = strings.NewReplacer(`\/`, `/`, `\u0026`, `&`)

	// Fractional seconds, which the ISO parser does not accept: "PT12.5S".
	isoFractionPattern = regexp.MustCompile(`(\d+)[.,](\d+)S$`)
)

// titleFromCaption derives a display title from a post caption: its first
// line, trimmed, truncated to 150 characters.
func titleFromCaption(caption string) string {
	if caption == "" {
		return ""
	}
	first := strings.TrimSpace(captionLineBreak.Split(caption, 2)[0])
	if utf8.RuneCountInString(first) > maxTitleRunes {
		runes := []rune(first)
		return string(runes[:truncatedTitleRunes]) + "..."
	}
	return first
}

// authorFromTitle guesses the account name from an og:title style string.
func authorFromTitle(title string) string {
	if title == "" {
		return ""
	}
	if m := authorFromTitlePattern.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	if !strings.ContainsAny(title, " \t\r\n") && len(title) < maxBareAuthorLen {
		return title
	}
	return ""
}

// authorFromDescription guesses the account name from an og:description
// string, falling back to the whole description.
func authorFromDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}
	if a := authorFromTitle(desc); a != "" {
		return a
	}
	if m := authorFromDescriptionPattern.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return desc
}

// parseDurationMillis accepts either a number of seconds ("12.5") or an
// ISO-8601 duration ("PT1M5S"). It returns 0 when the value is missing,
// unparseable or not positive.
func parseDurationMillis(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0
		}
		return int64(math.Round(secs * 1000))
	}

	return isoMillis(raw)
}

// isoMillis parses an ISO-8601 duration into milliseconds using fixed-length
// years, months and days. Values that do not fit in a time.Duration give 0.
func isoMillis(raw string) int64 {
	var fraction float64
	if m := isoFractionPattern.FindStringSubmatchIndex(raw); m != nil {
		fraction, _ = strconv.ParseFloat("0."+raw[m[4]:m[5]], 64)
		raw = raw[:m[0]] + raw[m[2]:m[3]] + "S"
	}

	d, err := duration.ParseISO8601(raw)
	if err != nil {
		return 0
	}

	const day = 24 * time.Hour
	parts := []struct {
		n    int
		unit time.Duration
	}{
		{d.Y, 365 * day},
		{d.M, 30 * day},
		{d.W, 7 * day},
		{d.D, day},
		{d.TH, time.Hour},
		{d.TM, time.Minute},
		{d.TS, time.Second},
	}

	var total time.Duration
	for _, p := range parts {
		if p.n < 0 || int64(p.n) > int64(math.MaxInt64-total)/int64(p.unit) {
			return 0
		}
		total += time.Duration(p.n) * p.unit
	}

	ms := total.Milliseconds()
	extra := int64(math.Round(fraction * 1000))
	if ms > math.MaxInt64-extra {
		return 0
	}
	return ms + extra
}

// unescapeURL undoes the JSON escaping Instagram applies to embedded URLs.
func unescapeURL(s string) string {
	return urlEscapes.Replace(strings.TrimSpace(s))
}
