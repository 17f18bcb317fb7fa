package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
)

// Watcher plays an item's video.
type Watcher interface {
	Watch(item catalog.MediaItem) error
}

// Notifier turns store change callbacks into a channel the UI can wait on.
// Bursts of changes coalesce into one pending notification.
type Notifier struct {
	ch chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify is registered as the store's change hook.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// headerHeight covers the brand line and the framed search box.
const headerHeight = 4

// footerHeight covers the separator and the status bar.
const footerHeight = 2

type App struct {
	ctx             context.Context
	cancel          context.CancelFunc
	config          *config.Config
	store           *catalog.Store
	watcher         Watcher
	notifier        *Notifier
	keyHandler      *KeyHandler
	itemList        list.Model
	searchInput     textinput.Model
	viewport        viewport.Model
	spinner         spinner.Model
	view            View
	current         *catalog.MediaItem // item shown in the detail view
	filter          catalog.FilterState
	total           int
	loading         bool
	loadingDetail   bool
	status          string
	statusKind      StatusKind
	width           int
	height          int
	err             error
	glamourStyle    string
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp builds the catalog browser. notifier must be the one registered
// as the store's change hook; it may be nil when nothing else mutates the
// store.
func NewApp(cfg *config.Config, store *catalog.Store, watcher Watcher, notifier *Notifier) *App {
	ApplyColors(cfg.UI.Colors)

	itemList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	itemList.SetShowTitle(false)
	itemList.SetShowStatusBar(false)
	itemList.SetFilteringEnabled(false)
	itemList.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search titles..."
	si.Prompt = "⌕ "
	si.CharLimit = maxSearchLength

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	if notifier == nil {
		notifier = NewNotifier()
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:          ctx,
		cancel:       cancel,
		config:       cfg,
		store:        store,
		watcher:      watcher,
		notifier:     notifier,
		itemList:     itemList,
		searchInput:  si,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewCatalog,
		glamourStyle: "auto",
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	app.syncFromStore()

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		style := glamour.WithAutoStyle()
		if a.glamourStyle != "auto" {
			style = glamour.WithStandardStyle(a.glamourStyle)
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wordWrapWidth))
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	a.setStatus(MsgLoading, StatusInfo)
	return tea.Batch(
		a.refresh(),
		a.waitForChange(),
		a.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		bodyHeight := a.bodyHeight()
		a.itemList.SetSize(msg.Width, bodyHeight)
		a.viewport.Width = msg.Width
		a.viewport.Height = bodyHeight
		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width
		}
		a.searchInput.Width = inputWidth
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case storeChangedMsg:
		a.syncFromStore()
		return a, a.waitForChange()

	case refreshDoneMsg:
		a.syncFromStore()
		if msg.err != nil {
			a.setError(msg.err)
		} else {
			a.setStatus(MsgResultsCount(len(a.itemList.Items())), StatusInfo)
		}
		return a, nil

	case downloadDoneMsg:
		a.syncFromStore()
		if msg.err != nil {
			a.setError(wrapErr("download not confirmed", msg.err))
		} else if item, ok := a.heldItem(msg.id); ok {
			a.setStatus(MsgDownloaded(item.Title, item.Downloads), StatusSuccess)
		}
		if a.view == ViewDetail && a.current != nil && a.current.ID == msg.id {
			return a, a.renderDetail(*a.current, true)
		}
		return a, nil

	case seedDoneMsg:
		a.syncFromStore()
		switch {
		case msg.report.Skipped:
			a.setStatus(MsgSeedSkipped, StatusInfo)
		case msg.report.Failed() > 0:
			a.setStatus(MsgSeedSummary(msg.report), StatusWarn)
		default:
			a.setStatus(MsgSeedSummary(msg.report), StatusSuccess)
		}
		if msg.err != nil {
			a.setError(msg.err)
		}
		return a, nil

	case watchDoneMsg:
		if msg.err != nil {
			a.setError(msg.err)
		} else {
			a.setStatus(MsgWatching(msg.title), StatusSuccess)
		}
		return a, nil

	case detailRenderedMsg:
		if a.view == ViewDetail && a.current != nil && a.current.ID == msg.id {
			a.viewport.SetContent(msg.content)
			if !msg.keepOffset {
				a.viewport.GotoTop()
			}
			a.loadingDetail = false
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case errorMsg:
		a.setError(msg.err)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case ViewCatalog:
		a.itemList, cmd = a.itemList.Update(msg)
	case ViewDetail:
		switch msg.(type) {
		case tea.MouseMsg:
			a.viewport, cmd = a.viewport.Update(msg)
		}
	}
	return a, cmd
}

// syncFromStore re-projects the store snapshot into the list, keeping the
// selected item selected when it is still visible.
func (a *App) syncFromStore() {
	snap := a.store.Snapshot()
	a.total = len(snap.Items)
	a.loading = snap.Loading
	a.filter = snap.Filter

	var selected catalog.ItemID
	if it, ok := a.itemList.SelectedItem().(catalogItem); ok {
		selected = it.item.ID
	}

	visible := catalog.Project(snap.Items, snap.Filter)
	items := make([]list.Item, len(visible))
	index := 0
	for i, m := range visible {
		items[i] = catalogItem{item: m}
		if m.ID == selected {
			index = i
		}
	}
	a.itemList.SetItems(items)
	if len(items) > 0 {
		a.itemList.Select(index)
	}

	if a.current != nil {
		for _, m := range snap.Items {
			if m.ID == a.current.ID {
				item := m
				a.current = &item
				break
			}
		}
	}
}

func (a *App) heldItem(id catalog.ItemID) (catalog.MediaItem, bool) {
	for _, m := range a.store.Items() {
		if m.ID == id {
			return m, true
		}
	}
	return catalog.MediaItem{}, false
}

func (a *App) selectedItem() (catalog.MediaItem, bool) {
	it, ok := a.itemList.SelectedItem().(catalogItem)
	if !ok {
		return catalog.MediaItem{}, false
	}
	return it.item, true
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
	a.err = nil
}

func (a *App) setError(err error) {
	a.err = err
}

func (a *App) bodyHeight() int {
	h := a.height - headerHeight - footerHeight
	if h < 3 {
		h = 3
	}
	return h
}

func (a *App) View() string {
	header := lipgloss.JoinVertical(lipgloss.Top,
		renderHeader(a.filter.ActiveTab(), a.total, a.busyIndicator(), a.width),
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
	)

	var content string
	switch a.view {
	case ViewDetail:
		if a.loadingDetail {
			content = renderCentered(a.width, a.bodyHeight(), renderMuted(MsgRendering))
		} else {
			content = a.viewport.View()
		}
	default:
		switch {
		case a.loading && len(a.itemList.Items()) == 0:
			content = renderCentered(a.width, a.bodyHeight(),
				a.spinner.View()+" "+renderMuted(MsgLoading))
		case len(a.itemList.Items()) == 0:
			content = renderCentered(a.width, a.bodyHeight(),
				GetEmptyMessage(a.config.Keys.Bindings.Seed))
		default:
			content = a.itemList.View()
		}
	}

	content = ContentWrapper(a.width, a.bodyHeight()).Render(content)

	separatorWidth := a.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, header, content, separator, a.getCustomStatusBar())
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func (a *App) busyIndicator() string {
	if a.loading {
		return a.spinner.View() + " "
	}
	return ""
}

func (a *App) getCustomStatusBar() string {
	if a.err != nil {
		return StatusBarStyle.Width(a.width).Render(
			ErrorMessageStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	parts := []string{}
	if a.status != "" {
		parts = append(parts, statusStyle(a.statusKind).Render(a.status))
	}
	if commands := a.keyHandler.GetHelpForCurrentView(); len(commands) > 0 {
		parts = append(parts, renderHelp(strings.Join(commands, " • ")))
	}
	return StatusBarStyle.Width(a.width).MaxHeight(1).Render(strings.Join(parts, "  "))
}

type catalogItem struct {
	item catalog.MediaItem
}

func (i catalogItem) Title() string { return i.item.Title }

func (i catalogItem) Description() string {
	parts := []string{KindStyle.Render(kindLabel(i.item.Kind))}
	if i.item.Year != nil {
		parts = append(parts, strconv.Itoa(*i.item.Year))
	}
	if i.item.Rating != nil {
		parts = append(parts, RatingStyle.Render(fmt.Sprintf("★ %.1f", *i.item.Rating)))
	}
	parts = append(parts, DownloadsStyle.Render(fmt.Sprintf("⬇ %d", i.item.Downloads)))
	if len(i.item.Tags) > 0 {
		parts = append(parts, renderMuted(truncateEnd(strings.Join(i.item.Tags, ", "), 40)))
	}
	return strings.Join(parts, " • ")
}

func (i catalogItem) FilterValue() string { return i.item.Title }

func kindLabel(k catalog.Kind) string {
	if k == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(string(k))
}

type storeChangedMsg struct{}

type refreshDoneMsg struct {
	err error
}

type downloadDoneMsg struct {
	id  catalog.ItemID
	err error
}

type seedDoneMsg struct {
	report catalog.SeedReport
	err    error
}

type watchDoneMsg struct {
	title string
	err   error
}

type detailRenderedMsg struct {
	id         catalog.ItemID
	content    string
	keepOffset bool
}

type errorMsg struct {
	err error
}
