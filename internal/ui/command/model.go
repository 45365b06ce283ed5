package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// commands lists the recognized palette commands with a short hint.
var commands = []struct {
	name string
	hint string
}{
	{"timer <minutes>", "start a sleep timer"},
	{"cancel", "cancel the sleep timer"},
	{"goal <hours>", "set the sleep goal"},
	{"sync", "pull health data now"},
	{"sounds", "go to the library"},
	{"progress", "go to progress"},
	{"journal", "go to the journal"},
	{"settings", "open settings"},
	{"quit", "exit lull"},
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "timer 30, goal 7.5, sync..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette with matching suggestions.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	rows := []string{
		titleStyle.Render("Command"),
		m.input.View(),
		"",
	}

	typed := strings.ToLower(strings.TrimSpace(m.input.Value()))
	for _, c := range commands {
		if typed != "" && !strings.HasPrefix(c.name, typed) {
			continue
		}
		rows = append(rows, theme.HelpStyle.Render(
			"  "+c.name+" · "+c.hint,
		))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus clears any previous input and gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
