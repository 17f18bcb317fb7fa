package tui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
)

const maxSearchLength = 256

// KeyHandler maps keys to catalog actions. Refresh and get-started take
// the configured modifier; the single-letter actions do not.
type KeyHandler struct {
	app         *App
	bindings    config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, bindings: cfg.Keys.Bindings, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewCatalog && kh.app.searchInput.Focused()
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return kh.quit()
	case "esc":
		kh.app.searchInput.Blur()
		return kh.app, nil
	case "enter":
		// Typing only filters locally; enter asks the service.
		kh.app.searchInput.Blur()
		kh.app.setStatus(MsgRefreshing, StatusInfo)
		return kh.app, kh.app.refresh()
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput updates the search box and re-projects locally.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.searchInput.Value()
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	value := sanitizeSearchInput(kh.app.searchInput.Value())
	if value != kh.app.searchInput.Value() {
		kh.app.searchInput.SetValue(value)
	}
	if value != prev {
		kh.app.store.SetSearchText(value)
		kh.app.syncFromStore()
	}
	return kh.app, cmd
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.bindings.Quit:
		model, cmd := kh.quit()
		return model, cmd, true
	case kh.bindings.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Refresh:
		kh.app.setStatus(MsgRefreshing, StatusInfo)
		return kh.app, kh.app.refresh(), true
	case kh.modifierKey + kh.bindings.GetStarted:
		// Back to everything, then fetch.
		kh.app.view = ViewCatalog
		kh.app.store.SetTab(catalog.TabAll)
		kh.app.syncFromStore()
		kh.app.setStatus(MsgRefreshing, StatusInfo)
		return kh.app, kh.app.refresh(), true
	}

	switch kh.app.view {
	case ViewCatalog:
		return kh.handleCatalogCustomKeys(key)
	case ViewDetail:
		return kh.handleDetailCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleCatalogCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.bindings.Search:
		kh.app.searchInput.Focus()
		return kh.app, nil, true
	case "left", "shift+tab":
		kh.cycleTab(-1)
		return kh.app, nil, true
	case "right", "tab":
		kh.cycleTab(1)
		return kh.app, nil, true
	case "1", "2", "3", "4":
		kh.setTab(catalog.Tabs[int(key[0]-'1')])
		return kh.app, nil, true
	case kh.bindings.Download:
		if item, ok := kh.app.selectedItem(); ok {
			return kh.app, kh.app.download(item.ID), true
		}
		return kh.app, nil, true
	case kh.bindings.Watch:
		if item, ok := kh.app.selectedItem(); ok {
			return kh.app, kh.app.watch(item), true
		}
		return kh.app, nil, true
	case kh.bindings.Seed:
		if len(kh.app.itemList.Items()) > 0 || kh.app.loading {
			kh.app.setStatus(MsgSeedNotEmpty, StatusInfo)
			return kh.app, nil, true
		}
		kh.app.setStatus(MsgSeeding, StatusInfo)
		return kh.app, kh.app.seed(), true
	case "enter":
		if item, ok := kh.app.selectedItem(); ok {
			kh.app.current = &item
			kh.app.view = ViewDetail
			kh.app.loadingDetail = true
			return kh.app, kh.app.renderDetail(item, false), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if kh.app.current == nil {
		return kh.app, nil, false
	}
	switch key {
	case kh.bindings.Download:
		return kh.app, kh.app.download(kh.app.current.ID), true
	case kh.bindings.Watch:
		return kh.app, kh.app.watch(*kh.app.current), true
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewCatalog:
		kh.app.itemList, cmd = kh.app.itemList.Update(msg)
		return kh.app, cmd
	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd
	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDetail:
		kh.app.view = ViewCatalog
		kh.app.current = nil
		kh.app.loadingDetail = false
		return kh.app, nil
	default:
		// Clearing the search only re-projects; enter fetches.
		if kh.app.searchInput.Value() != "" {
			kh.app.searchInput.Reset()
			kh.app.store.SetSearchText("")
			kh.app.syncFromStore()
		}
		return kh.app, nil
	}
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.cancel()
	return kh.app, tea.Quit
}

func (kh *KeyHandler) setTab(tab catalog.Tab) {
	kh.app.store.SetTab(tab)
	kh.app.syncFromStore()
}

func (kh *KeyHandler) cycleTab(step int) {
	current := kh.app.store.Filter().ActiveTab()
	idx := 0
	for i, t := range catalog.Tabs {
		if t == current {
			idx = i
			break
		}
	}
	n := len(catalog.Tabs)
	kh.setTab(catalog.Tabs[((idx+step)%n+n)%n])
}

// sanitizeSearchInput drops control characters and limits length. Spaces
// are kept because the service receives the text verbatim.
func sanitizeSearchInput(input string) string {
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	if r := []rune(input); len(r) > maxSearchLength {
		input = string(r[:maxSearchLength])
	}
	return input
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.bindings
	switch kh.app.view {
	case ViewCatalog:
		if kh.app.searchInput.Focused() {
			return []string{"enter: fetch", "esc: done"}
		}
		if len(kh.app.itemList.Items()) == 0 {
			return []string{b.Seed + ": seed", b.Search + ": search", "←/→: tabs", kh.modifierKey + b.Refresh + ": refresh", b.Quit + ": quit"}
		}
		return []string{
			b.Search + ": search",
			"←/→: tabs",
			"enter: details",
			b.Download + ": download",
			b.Watch + ": watch",
			kh.modifierKey + b.Refresh + ": refresh",
			kh.modifierKey + b.GetStarted + ": get started",
			b.Quit + ": quit",
		}

	case ViewDetail:
		return []string{b.Download + ": download", b.Watch + ": watch", b.Back + ": back"}

	default:
		return []string{}
	}
}
