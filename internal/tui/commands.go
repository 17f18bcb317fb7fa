package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/uriel/internal/catalog"
)

// waitForChange blocks until the store reports a change. Update re-issues
// it after every storeChangedMsg.
func (a *App) waitForChange() tea.Cmd {
	ch := a.notifier.ch
	ctx := a.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return storeChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// refresh fetches the catalog for the current filter.
func (a *App) refresh() tea.Cmd {
	filter := a.store.Filter()
	return func() tea.Msg {
		return refreshDoneMsg{err: a.store.Refresh(a.ctx, filter)}
	}
}

func (a *App) download(id catalog.ItemID) tea.Cmd {
	return func() tea.Msg {
		return downloadDoneMsg{id: id, err: a.store.ApplyDownload(a.ctx, id)}
	}
}

func (a *App) seed() tea.Cmd {
	return func() tea.Msg {
		report, err := a.store.SeedIfEmpty(a.ctx)
		return seedDoneMsg{report: report, err: err}
	}
}

func (a *App) watch(item catalog.MediaItem) tea.Cmd {
	return func() tea.Msg {
		if a.watcher == nil {
			return watchDoneMsg{title: item.Title, err: fmt.Errorf("no video player configured")}
		}
		if err := a.watcher.Watch(item); err != nil {
			return watchDoneMsg{title: item.Title, err: wrapErr("watch "+item.Title, err)}
		}
		return watchDoneMsg{title: item.Title}
	}
}

// renderDetail renders the item as markdown for the detail viewport.
func (a *App) renderDetail(item catalog.MediaItem, keepOffset bool) tea.Cmd {
	return func() tea.Msg {
		r, err := a.getRenderer()
		if err != nil {
			return detailRenderedMsg{id: item.ID, content: "Error initializing renderer: " + err.Error()}
		}

		rendered, err := r.Render(detailMarkdown(item))
		if err != nil {
			return detailRenderedMsg{id: item.ID, content: fmt.Sprintf("Failed to render %s: %v", item.Title, err)}
		}
		return detailRenderedMsg{id: item.ID, content: rendered, keepOffset: keepOffset}
	}
}

func detailMarkdown(item catalog.MediaItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Title)

	meta := []string{kindLabel(item.Kind)}
	if item.Year != nil {
		meta = append(meta, fmt.Sprintf("%d", *item.Year))
	}
	if item.Rating != nil {
		meta = append(meta, fmt.Sprintf("★ %.1f", *item.Rating))
	}
	fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " · "))
	fmt.Fprintf(&b, "**Downloads:** %d\n\n", item.Downloads)

	if item.Description != "" {
		b.WriteString(item.Description)
		b.WriteString("\n\n")
	}

	if len(item.Tags) > 0 {
		tags := make([]string, len(item.Tags))
		for i, t := range item.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(tags, " "))
	}

	if item.VideoURL != "" || item.PosterURL != "" {
		b.WriteString("---\n\n")
		if item.VideoURL != "" {
			fmt.Fprintf(&b, "- Video: %s\n", truncateMiddle(item.VideoURL, 120))
		}
		if item.PosterURL != "" {
			fmt.Fprintf(&b, "- Poster: %s\n", truncateMiddle(item.PosterURL, 120))
		}
	}
	return b.String()
}

// wrapErr prefixes err with the action that failed.
func wrapErr(action string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}
