package tui

import "github.com/charmbracelet/x/ansi"

// truncateEnd cuts s to at most limit terminal cells, ending in an ellipsis
// when anything was removed.
func truncateEnd(s string, limit int) string {
	switch {
	case limit <= 0:
		return ""
	case ansi.StringWidth(s) <= limit:
		return s
	case limit == 1:
		return "…"
	}
	return ansi.Truncate(s, limit, "…")
}

// truncateMiddle keeps both ends of s, which matters for URLs.
func truncateMiddle(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	case limit == 1:
		return "…"
	}
	head := (limit - 1) / 2
	tail := limit - 1 - head
	return string(r[:head]) + "…" + string(r[len(r)-tail:])
}
