package ui

import "testing"

func TestNumbered(t *testing.T) {
	got := numbered([]string{"a - one", "b\tsplit\nline"})
	want := "0\ta - one\n1\tb split line\n"
	if got != want {
		t.Errorf("numbered() = %q, want %q", got, want)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		n       int
		want    int
		wantErr bool
	}{
		{"first", "0\ta - one\n", 2, 0, false},
		{"second", "1\tb\n", 2, 1, false},
		{"empty", "\n", 2, -1, true},
		{"not a number", "x\tb\n", 2, -1, true},
		{"out of range", "5\tb\n", 2, -1, true},
		{"negative", "-1\tb\n", 2, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.out, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSelection() = %d, want %d", got, tt.want)
			}
		})
	}
}
