package journalview

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/theme"
)

// EntryItem wraps a model.JournalEntry so it can be used in a bubbles/list.
type EntryItem struct {
	Entry model.JournalEntry
}

// FilterValue returns the string used for fuzzy filtering.
func (i EntryItem) FilterValue() string { return i.Entry.Title }

// Title returns the entry title for the list.
func (i EntryItem) Title() string { return i.Entry.Title }

// Description returns a short summary line for the list.
func (i EntryItem) Description() string {
	return i.Entry.Date + " | " + string(i.Entry.Mood)
}

// ItemDelegate implements list.ItemDelegate for rendering journal entries.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single journal entry line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EntryItem)
	if !ok {
		return
	}

	mood := theme.MoodStyle(string(ei.Entry.Mood)).Render(string(ei.Entry.Mood))
	line := fmt.Sprintf("%s  %s  %s", ei.Entry.Date, mood, ei.Entry.Title)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
