package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the media kind of a catalog entry.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
	KindAnime  Kind = "anime"
)

// Kinds lists the recognised kinds in tab order.
var Kinds = []Kind{KindMovie, KindSeries, KindAnime}

// Valid reports whether k is one of the recognised kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindSeries, KindAnime:
		return true
	default:
		return false
	}
}

// ItemID is an opaque item identifier. The service may send it as a JSON
// string or a JSON number; both decode to the same textual form.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) String() string { return string(id) }

// MediaItem is one catalog entry as returned by the remote service.
type MediaItem struct {
	ID          ItemID   `json:"id"`
	Title       string   `json:"title"`
	Kind        Kind     `json:"kind"`
	Year        *int     `json:"year,omitempty"`
	Description string   `json:"description,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Downloads   int      `json:"downloads"`
	Tags        []string `json:"tags,omitempty"`
}

// HasTag reports whether the item carries tag, ignoring order.
func (m MediaItem) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Draft is the payload for creating a new catalog entry.
type Draft struct {
	Title       string   `json:"title" toml:"title"`
	Kind        Kind     `json:"kind" toml:"kind"`
	Year        *int     `json:"year,omitempty" toml:"year"`
	Description string   `json:"description,omitempty" toml:"description"`
	PosterURL   string   `json:"poster_url,omitempty" toml:"poster_url"`
	VideoURL    string   `json:"video_url,omitempty" toml:"video_url"`
	Rating      *float64 `json:"rating,omitempty" toml:"rating"`
	Tags        []string `json:"tags,omitempty" toml:"tags"`
}

// Validate checks the fields the service requires.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrCreateFailed)
	}
	if d.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrCreateFailed)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrCreateFailed, d.Kind)
	}
	return nil
}

// DownloadResult is the authoritative state returned by the download endpoint.
// Downloads is nil when the service omitted the counter.
type DownloadResult struct {
	ID        ItemID `json:"id,omitempty"`
	Downloads *int   `json:"downloads"`
}

// Tab is the coarse kind filter of the catalog view.
type Tab string

// TabAll matches every item regardless of kind.
const TabAll Tab = "all"

// Tabs lists every tab in display order.
var Tabs = []Tab{TabAll, Tab(KindMovie), Tab(KindSeries), Tab(KindAnime)}

// ParseTab accepts "all" or any recognised kind, case-insensitively.
func ParseTab(s string) (Tab, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(TabAll) {
		return TabAll, nil
	}
	if Kind(s).Valid() {
		return Tab(s), nil
	}
	return "", fmt.Errorf("unknown tab %q (want all, movie, series or anime)", s)
}

// Label returns the display label for the tab.
func (t Tab) Label() string {
	switch t {
	case TabAll:
		return "All"
	case Tab(KindMovie):
		return "Movies"
	case Tab(KindSeries):
		return "Series"
	case Tab(KindAnime):
		return "Anime"
	default:
		return string(t)
	}
}

// FilterState is the ephemeral tab and search selection of the view.
type FilterState struct {
	Tab        Tab
	SearchText string
}

// ActiveTab returns the tab, treating the zero value as TabAll.
func (f FilterState) ActiveTab() Tab {
	if f.Tab == "" {
		return TabAll
	}
	return f.Tab
}
