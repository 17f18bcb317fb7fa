package tui

import (
	"errors"
	"testing"

	"github.com/pders01/uriel/internal/catalog"
)

func TestMsgResultsCount(t *testing.T) {
	tests := map[int]string{0: MsgNoResults, 1: "1 result", 12: "12 results"}
	for n, want := range tests {
		if got := MsgResultsCount(n); got != want {
			t.Errorf("MsgResultsCount(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestMsgSeedSummary(t *testing.T) {
	ok := catalog.SeedReport{Attempted: 3, Created: 3}
	if got := MsgSeedSummary(ok); got != "Seeded 3 of 3 titles" {
		t.Errorf("MsgSeedSummary() = %q", got)
	}

	partial := catalog.SeedReport{Attempted: 3, Created: 2, Errors: []error{errors.New("409")}}
	if got := MsgSeedSummary(partial); got != "Seeded 2 of 3 titles • 1 failed" {
		t.Errorf("MsgSeedSummary() = %q", got)
	}
}

func TestMsgDownloaded(t *testing.T) {
	if got := MsgDownloaded(" Neon Drift ", 6); got != "Downloaded 'Neon Drift' (6 total)" {
		t.Errorf("MsgDownloaded() = %q", got)
	}
}

func TestTruncateEnd(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 4, "abc…"},
		{"abcdef", 1, "…"},
		{"abcdef", 0, ""},
		{"ßüöäx", 3, "ßü…"},
	}
	for _, tt := range tests {
		if got := truncateEnd(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateEnd(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"https://a.b/c", 20, "https://a.b/c"},
		{"abcdefghij", 5, "ab…ij"},
		{"abcdefghij", 2, "…j"},
		{"abcdefghij", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateMiddle(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateMiddle(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
