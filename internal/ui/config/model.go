package config

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/credential"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/theme"
)

// DoneMsg is emitted when the settings view closes without saving.
type DoneMsg struct{}

// SavedMsg is emitted after the settings were written. A restart is
// required for a changed poll interval or player command to take effect.
type SavedMsg struct {
	Config *model.AppConfig
	Err    error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	healthEnabled bool
	baseURL       string
	pollInterval  string
	token         string
	playerCommand string
	theme         string
}

// Model is the settings view: a single form over the app configuration
// plus the health-export token.
type Model struct {
	configPath string
	cfg        *model.AppConfig

	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a settings view for the given configuration.
func New(cfg *model.AppConfig, configPath string, width, height int) Model {
	return Model{
		configPath: configPath,
		cfg:        cfg,
		fb:         &formBindings{},
		width:      width,
		height:     height,
	}
}

// Init seeds the form from the current configuration.
func (m *Model) Init() tea.Cmd {
	m.fb.healthEnabled = m.cfg.Health.Enabled
	m.fb.baseURL = m.cfg.Health.BaseURL
	m.fb.pollInterval = strconv.Itoa(m.cfg.Health.PollIntervalSec)
	m.fb.token = ""
	m.fb.playerCommand = m.cfg.Audio.PlayerCommand
	m.fb.theme = m.cfg.Display.Theme
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		save := m.save()
		m.form = nil
		return m, save
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Health sync").
				Affirmative("Enabled").
				Negative("Disabled").
				Value(&m.fb.healthEnabled),
			huh.NewInput().
				Title("Health export URL").
				Placeholder("https://health.example.com").
				Value(&m.fb.baseURL),
			huh.NewInput().
				Title("Poll interval (seconds)").
				Value(&m.fb.pollInterval).
				Validate(validateInterval),
			huh.NewInput().
				Title("Export token").
				Placeholder("leave empty to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
			huh.NewInput().
				Title("Player command").
				Value(&m.fb.playerCommand),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("default", "default"),
					huh.NewOption("night", "night"),
				).
				Value(&m.fb.theme),
		),
	).WithWidth(m.formWidth())
}

// save writes the configuration file and, when a token was entered,
// stores it in the system keyring.
func (m Model) save() tea.Cmd {
	cfg := *m.cfg
	cfg.Health.Enabled = m.fb.healthEnabled
	cfg.Health.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	if interval, err := strconv.Atoi(strings.TrimSpace(m.fb.pollInterval)); err == nil {
		cfg.Health.PollIntervalSec = interval
	}
	cfg.Audio.PlayerCommand = strings.TrimSpace(m.fb.playerCommand)
	cfg.Display.Theme = m.fb.theme

	token := strings.TrimSpace(m.fb.token)
	path := m.configPath

	return func() tea.Msg {
		if token != "" {
			if err := credential.SetHealthToken(token); err != nil {
				return SavedMsg{Err: err}
			}
		}
		if err := model.SaveConfig(path, &cfg); err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Config: &cfg}
	}
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Settings") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the settings view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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

func validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of seconds")
	}
	return nil
}
