package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/uriel/internal/catalog"
)

// renderHeader returns the brand line with the tab strip and the total
// count aligned right.
func renderHeader(active catalog.Tab, total int, busy string, width int) string {
	left := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(CompactLogo),
		"  ",
		renderTabs(active),
	)
	right := renderMuted(busy + "Total: " + strconv.Itoa(total))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(left + strings.Repeat(" ", gap) + right)
}

func renderTabs(active catalog.Tab) string {
	parts := make([]string, 0, len(catalog.Tabs))
	for i, tab := range catalog.Tabs {
		label := strconv.Itoa(i+1) + " " + tab.Label()
		if tab == active {
			parts = append(parts, ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, InactiveTabStyle.Render(label))
		}
	}
	return strings.Join(parts, SeparatorStyle.Render("│"))
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderMuted renders text in muted color (utility wrapper).
func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

// renderHelp renders help/instructional text consistently.
func renderHelp(text string) string {
	return HelpStyle.Render(text)
}
