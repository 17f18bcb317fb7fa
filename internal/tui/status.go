package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/uriel/internal/catalog"
)

// StatusKind selects the status bar style.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Canonical short status messages used across the app.
const (
	MsgLoading       = "Loading…"
	MsgRefreshing    = "Refreshing…"
	MsgSeeding       = "Adding sample titles…"
	MsgRendering     = "Rendering…"
	MsgNoResults     = "No results"
	MsgSeedSkipped   = "Catalog is not empty, nothing seeded"
	MsgSeedNotEmpty  = "Seeding only runs while the view is empty"
	MsgNothingToShow = "Nothing here yet."
)

func MsgResultsCount(n int) string {
	switch n {
	case 0:
		return MsgNoResults
	case 1:
		return "1 result"
	default:
		return fmt.Sprintf("%d results", n)
	}
}

func MsgDownloaded(title string, downloads int) string {
	return fmt.Sprintf("Downloaded '%s' (%d total)", strings.TrimSpace(title), downloads)
}

func MsgWatching(title string) string {
	return fmt.Sprintf("Playing '%s'", strings.TrimSpace(title))
}

func MsgSeedSummary(r catalog.SeedReport) string {
	base := fmt.Sprintf("Seeded %d of %d titles", r.Created, r.Attempted)
	if f := r.Failed(); f > 0 {
		base += fmt.Sprintf(" • %d failed", f)
	}
	return base
}
