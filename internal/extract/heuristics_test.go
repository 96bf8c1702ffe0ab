package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTitleFromCaption(t *testing.T) {
	long := strings.Repeat("é", 200)

	tests := []struct {
		name    string
		caption string
		want    string
	}{
		{"empty", "", ""},
		{"single line", "  Sunset vibes  ", "Sunset vibes"},
		{"drops later lines", "First line\nsecond line", "First line"},
		{"crlf", "First line\r\nsecond", "First line"},
		{"exactly 150", strings.Repeat("a", 150), strings.Repeat("a", 150)},
		{"truncates", long + "\nmore", strings.Repeat("é", 147) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titleFromCaption(tt.caption)
			if got != tt.want {
				t.Errorf("titleFromCaption() = %q, want %q", got, tt.want)
			}
		})
	}

	if n := utf8.RuneCountInString(titleFromCaption(long)); n != 150 {
		t.Errorf("truncated title has %d runes, want 150", n)
	}
}

func TestAuthorFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"natgeo on Instagram: \"Whales breaching\"", "natgeo"},
		{"National Geographic (@natgeo) • Instagram reel", "National Geographic"},
		{"natgeo", "natgeo"},
		{"a very long caption with several words", ""},
		{strings.Repeat("x", 30), ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := authorFromTitle(tt.title); got != tt.want {
				t.Errorf("authorFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestAuthorFromDescription(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"1,234 likes, 56 comments - sunsetlover on March 1, 2024: Sunset vibes", "sunsetlover"},
		{"12K likes, 1 comment - chef.anna on June 2, 2023", "chef.anna"},
		{"somebody on Instagram: hello", "somebody"},
		{"Just a plain description", "Just a plain description"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := authorFromDescription(tt.desc); got != tt.want {
				t.Errorf("authorFromDescription(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}
}

func TestParseDurationMillis(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"12.5", 12500},
		{"7", 7000},
		{"0.0004", 0},
		{"PT1M5S", 65000},
		{"PT1H", 3600000},
		{"P1D", 86400000},
		{"PT0S", 0},
		{"PT12.5S", 12500},
		{"PT1M0,25S", 60250},
		{"PT0.5S", 500},
		{"P999999999Y", 0},
		{"PT9223372036854775807H", 0},
		{"0", 0},
		{"-3", 0},
		{"NaN", 0},
		{"", 0},
		{"soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseDurationMillis(tt.raw); got != tt.want {
				t.Errorf("parseDurationMillis(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUnescapeURL(t *testing.T) {
	got := unescapeURL(` https:\/\/cdn.example.com\/v.mp4?a=1\u0026b=2 `)
	want := "https://cdn.example.com/v.mp4?a=1&b=2"
	if got != want {
		t.Errorf("unescapeURL() = %q, want %q", got, want)
	}
}
