package timerview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/keys"
	"github.com/lullapp/lull/internal/sleeptimer"
	"github.com/lullapp/lull/internal/theme"
)

// presets are the selectable countdown durations in minutes.
var presets = []int{5, 10, 15, 20, 30, 45, 60, 90}

// Model is the sleep timer view: a preset picker plus the live countdown.
type Model struct {
	timer  *sleeptimer.Coordinator
	keys   *keys.KeyMap
	cursor int
	width  int
	height int
}

// New creates a sleep timer view bound to the shared coordinator.
func New(timer *sleeptimer.Coordinator, k *keys.KeyMap, width, height int) Model {
	return Model{
		timer:  timer,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the timer view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(presets)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Select):
		m.timer.Start(presets[m.cursor])
	case key.Matches(keyMsg, m.keys.Back), key.Matches(keyMsg, m.keys.Delete):
		m.timer.Cancel()
	}

	return m, nil
}

// View renders the preset list and the current countdown state.
func (m Model) View() string {
	snap := m.timer.Snapshot()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var status string
	if snap.Active {
		status = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorLilac).
			Render(fmt.Sprintf(
				"Sleeping in %s (%d min timer)",
				FormatRemaining(snap.Remaining), snap.Minutes,
			))
	} else {
		status = theme.HelpStyle.Render("No timer running")
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Sleep Timer"), status, "")
	for i, minutes := range presets {
		label := fmt.Sprintf("%d minutes", minutes)
		if snap.Active && snap.Minutes == minutes {
			label += " ←"
		}
		if i == m.cursor {
			rows = append(rows, theme.SelectedItemStyle.Render(label))
		} else {
			rows = append(rows, theme.ListItemStyle.Render(label))
		}
	}
	rows = append(rows, "", theme.HelpStyle.Render(
		"enter start · esc cancel",
	))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(1, 2).
		Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// FormatRemaining renders remaining seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
