package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Project derives the displayed sequence from the held items. It keeps the
// input order, never mutates items and performs no I/O.
func Project(items []MediaItem, f FilterState) []MediaItem {
	tab := f.ActiveTab()
	// cases.Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	needle := ""
	if f.SearchText != "" {
		needle = fold.String(f.SearchText)
	}

	out := make([]MediaItem, 0, len(items))
	for _, item := range items {
		if !MatchesTab(item, tab) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(item.Title), needle) {
			continue
		}
		out = append(out, cloneItem(item))
	}
	return out
}

// MatchesTab reports whether item belongs under tab. Items with an
// unrecognised kind only appear under TabAll.
func MatchesTab(item MediaItem, tab Tab) bool {
	if tab == "" || tab == TabAll {
		return true
	}
	return string(item.Kind) == string(tab)
}

// MatchesText reports whether text is a caseless substring of the title.
func MatchesText(item MediaItem, text string) bool {
	if text == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(item.Title), fold.String(text))
}

// cloneItem copies the reference fields so projected values can be handed
// to other goroutines without sharing backing arrays with the store.
func cloneItem(m MediaItem) MediaItem {
	if m.Year != nil {
		y := *m.Year
		m.Year = &y
	}
	if m.Rating != nil {
		r := *m.Rating
		m.Rating = &r
	}
	if m.Tags != nil {
		m.Tags = append([]string(nil), m.Tags...)
	}
	return m
}

func cloneItems(items []MediaItem) []MediaItem {
	if items == nil {
		return nil
	}
	out := make([]MediaItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}
