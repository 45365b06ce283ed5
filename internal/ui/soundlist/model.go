package soundlist

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/audiocache"
	"github.com/lullapp/lull/internal/keys"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/prefs"
	"github.com/lullapp/lull/internal/theme"
)

// PlayRequestMsg is sent when the user selects an item to play.
type PlayRequestMsg struct {
	Item model.ContentItem
}

// DownloadProgressMsg reports progress of an explicit download.
type DownloadProgressMsg struct {
	AudioID  string
	Fraction float64
}

// DownloadDoneMsg is sent when an explicit download finishes.
type DownloadDoneMsg struct {
	AudioID string
	Err     error
}

// downloadTimeout bounds an explicit, user-initiated download.
const downloadTimeout = 5 * time.Minute

// Model is the sound library list view.
type Model struct {
	list        list.Model
	items       []model.ContentItem
	cache       *audiocache.Manager
	prefs       *prefs.Prefs
	keys        *keys.KeyMap
	notify      func(tea.Msg)
	downloading map[string]float64
	searchMode  bool
	searchInput textinput.Model
	query       string
	width       int
	height      int
}

// New creates a sound list over the given catalog items. The notify
// function delivers out-of-band messages (download progress) to the
// running program; pass nil to drop them.
func New(
	items []model.ContentItem,
	cache *audiocache.Manager,
	p *prefs.Prefs,
	k *keys.KeyMap,
	notify func(tea.Msg),
	width, height int,
) Model {
	downloading := make(map[string]float64)

	l := list.New([]list.Item{}, newItemDelegate(downloading), width, height-2)
	l.Title = "Library"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search sounds..."
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		items:       items,
		cache:       cache,
		prefs:       p,
		keys:        k,
		notify:      notify,
		downloading: downloading,
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.reload()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SearchActive reports whether the search input is capturing keys.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// reload rebuilds the visible list items from the catalog, the current
// search query, and the download/favorite state.
func (m *Model) reload() {
	var visible []list.Item
	query := strings.ToLower(m.query)
	for _, item := range m.items {
		if query != "" && !strings.Contains(strings.ToLower(item.Title), query) {
			continue
		}
		visible = append(visible, SoundItem{
			Item:       item,
			Downloaded: m.cache.IsDownloaded(item.ID),
			Favorite:   m.prefs.IsFavorite(item.ID),
		})
	}
	m.list.SetItems(visible)
}

// Update handles messages for the sound list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DownloadProgressMsg:
		m.downloading[msg.AudioID] = msg.Fraction
		return m, nil

	case DownloadDoneMsg:
		delete(m.downloading, msg.AudioID)
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		m.reload()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.selected()
		if !ok || !item.Item.Playable() {
			return m, nil
		}
		content := item.Item
		return m, func() tea.Msg {
			return PlayRequestMsg{Item: content}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Favorite):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		// Errors here only affect persistence of the toggle; the UI
		// state is rebuilt from prefs either way.
		_, _ = m.prefs.ToggleFavorite(item.Item.ID)
		m.reload()
		return m, nil

	case key.Matches(msg, m.keys.Download):
		item, ok := m.selected()
		if !ok || !item.Item.Playable() || item.Downloaded {
			return m, nil
		}
		if _, inFlight := m.downloading[item.Item.ID]; inFlight {
			return m, nil
		}
		m.downloading[item.Item.ID] = 0
		return m, m.download(item.Item)

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selected()
		if !ok || !item.Downloaded {
			return m, nil
		}
		_ = m.cache.Delete(item.Item.ID)
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// selected returns the currently focused sound item.
func (m Model) selected() (SoundItem, bool) {
	item, ok := m.list.SelectedItem().(SoundItem)
	return item, ok
}

// download returns a tea.Cmd running an explicit download. Progress is
// reported through the injected notify function; the final result
// arrives as a DownloadDoneMsg.
func (m Model) download(item model.ContentItem) tea.Cmd {
	cache := m.cache
	notify := m.notify
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()

		var onProgress audiocache.ProgressFunc
		if notify != nil {
			onProgress = func(fraction float64) {
				notify(DownloadProgressMsg{
					AudioID:  item.ID,
					Fraction: fraction,
				})
			}
		}

		_, err := cache.Download(ctx, item.ID, item.AudioURL, onProgress)
		return DownloadDoneMsg{AudioID: item.ID, Err: err}
	}
}

// View renders the sound list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No sounds match your search.")
	}

	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
