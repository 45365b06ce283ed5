package journalview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/keys"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/store"
	"github.com/lullapp/lull/internal/theme"
)

// EntriesLoadedMsg delivers the queried journal entries.
type EntriesLoadedMsg struct {
	Entries []model.JournalEntry
}

// EntrySavedMsg is sent after a create, update, or delete completed.
type EntrySavedMsg struct {
	Err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title string
	body  string
	mood  string
}

// Model is the journal view: an entry list plus a create/edit form.
type Model struct {
	list  list.Model
	store store.Store
	keys  *keys.KeyMap

	form   *huh.Form
	fb     *formBindings
	editID string

	searchMode  bool
	searchInput textinput.Model
	query       string

	width  int
	height int
}

// New creates a journal view over the given store.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Journal"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search entries..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		fb:          &formBindings{},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init loads the initial entries.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a tea.Cmd that queries entries with the current search.
func (m Model) Load() tea.Cmd {
	s := m.store
	query := m.query
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		filter := store.JournalFilter{Limit: 100}
		if query != "" {
			filter.Query = &query
		}
		entries, err := s.GetJournalEntries(ctx, filter)
		if err != nil {
			return EntriesLoadedMsg{}
		}
		return EntriesLoadedMsg{Entries: entries}
	}
}

// FormActive reports whether the entry form is capturing input.
func (m Model) FormActive() bool {
	return m.form != nil
}

// SearchActive reports whether the search input is capturing keys.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// Update handles messages for the journal view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EntriesLoadedMsg:
		items := make([]list.Item, len(msg.Entries))
		for i, entry := range msg.Entries {
			items[i] = EntryItem{Entry: entry}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case EntrySavedMsg:
		return m, m.Load()

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		return m, m.Load()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewEntry):
		m.editID = ""
		m.fb.title = ""
		m.fb.body = ""
		m.fb.mood = string(model.MoodNeutral)
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(EntryItem)
		if !ok {
			return m, nil
		}
		m.editID = item.Entry.ID
		m.fb.title = item.Entry.Title
		m.fb.body = item.Entry.Body
		m.fb.mood = string(item.Entry.Mood)
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(EntryItem)
		if !ok {
			return m, nil
		}
		return m, m.deleteEntry(item.Entry.ID)

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := m.submit()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) buildForm() *huh.Form {
	moodOpts := make([]huh.Option[string], len(model.Moods))
	for i, mood := range model.Moods {
		moodOpts[i] = huh.NewOption(string(mood), string(mood))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("How was today?").
				Value(&m.fb.title).
				Validate(validateTitle),
			huh.NewText().
				Title("Entry").
				Placeholder("Write freely...").
				Value(&m.fb.body),
			huh.NewSelect[string]().
				Title("Mood").
				Options(moodOpts...).
				Value(&m.fb.mood),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	s := m.store
	entry := model.JournalEntry{
		ID:    m.editID,
		Title: m.fb.title,
		Body:  m.fb.body,
		Mood:  model.Mood(m.fb.mood),
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		if entry.ID != "" {
			err = s.UpdateJournalEntry(ctx, entry)
		} else {
			err = s.CreateJournalEntry(ctx, entry)
		}
		return EntrySavedMsg{Err: err}
	}
}

func (m Model) deleteEntry(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return EntrySavedMsg{Err: s.DeleteJournalEntry(ctx, id)}
	}
}

// View renders the journal list or the active form.
func (m Model) View() string {
	if m.form != nil {
		titleText := "New Entry"
		if m.editID != "" {
			titleText = "Edit Entry"
		}
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite).
			MarginBottom(1)
		content := titleStyle.Render(titleText) + "\n" + m.form.View()
		return lipgloss.NewStyle().Padding(1, 2).Render(content)
	}

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
			Render("No journal entries yet.\n\nPress n to write one.")
	}

	return m.list.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("Title is required")
	}
	return nil
}
