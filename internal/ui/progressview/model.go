package progressview

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/keys"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/theme"
	"github.com/lullapp/lull/internal/tracker"
)

// historyDays is how many days of history the view shows.
const historyDays = 7

// goalStep is the sleep-goal adjustment per keypress, in hours.
const goalStep = 0.5

// LoadedMsg delivers the queried summaries and the current sleep goal.
type LoadedMsg struct {
	Summaries []model.DailySummary
	Goal      float64
}

// EntrySavedMsg is sent after a manual tracking entry was written.
type EntrySavedMsg struct {
	Err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	category string
	value    string
	notes    string
}

// Model is the progress view: a week of stars plus manual entry.
type Model struct {
	tracker *tracker.Service
	keys    *keys.KeyMap

	summaries []model.DailySummary
	goal      float64

	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a progress view over the shared tracker.
func New(trk *tracker.Service, k *keys.KeyMap, width, height int) Model {
	return Model{
		tracker: trk,
		keys:    k,
		goal:    tracker.DefaultSleepGoalHours,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// Init loads the initial history.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a tea.Cmd that queries the last week of summaries.
func (m Model) Load() tea.Cmd {
	trk := m.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		end := time.Now()
		start := end.AddDate(0, 0, -(historyDays - 1))
		return LoadedMsg{
			Summaries: trk.Range(
				ctx,
				start.Format(model.DateFormat),
				end.Format(model.DateFormat),
			),
			Goal: trk.SleepGoalHours(ctx),
		}
	}
}

// FormActive reports whether the manual-entry form is capturing input.
func (m Model) FormActive() bool {
	return m.form != nil
}

// Update handles messages for the progress view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.summaries = msg.Summaries
		m.goal = msg.Goal
		return m, nil

	case EntrySavedMsg:
		return m, m.Load()

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKeys(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewEntry):
		m.fb.category = string(model.CategorySleep)
		m.fb.value = ""
		m.fb.notes = ""
		m.form = m.buildForm()
		return m, m.form.Init()

	case msg.String() == "+" || msg.String() == "=":
		return m, m.adjustGoal(goalStep)

	case msg.String() == "-":
		return m, m.adjustGoal(-goalStep)
	}
	return m, nil
}

func (m Model) adjustGoal(delta float64) tea.Cmd {
	trk := m.tracker
	goal := m.goal + delta
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := trk.SetSleepGoalHours(ctx, goal); err != nil {
			return EntrySavedMsg{Err: err}
		}
		return EntrySavedMsg{}
	}
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
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(
					huh.NewOption("Sleep (hours)", string(model.CategorySleep)),
					huh.NewOption("Mindfulness (minutes)", string(model.CategoryMindfulness)),
					huh.NewOption("Focus (achieved)", string(model.CategoryFocus)),
				).
				Value(&m.fb.category),
			huh.NewInput().
				Title("Value").
				Placeholder("hours, minutes, or yes/no").
				Value(&m.fb.value).
				Validate(validateValue),
			huh.NewText().
				Title("Notes").
				Placeholder("Optional...").
				Value(&m.fb.notes),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	trk := m.tracker
	category := model.Category(m.fb.category)
	raw := strings.TrimSpace(m.fb.value)
	notes := m.fb.notes
	date := time.Now().Format(model.DateFormat)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		switch category {
		case model.CategorySleep:
			hours, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil {
				return EntrySavedMsg{Err: parseErr}
			}
			err = trk.TrackSleep(ctx, date, hours, nil, nil, notes)
		case model.CategoryMindfulness:
			minutes, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil {
				return EntrySavedMsg{Err: parseErr}
			}
			err = trk.TrackMindfulness(ctx, date, minutes, nil, nil, notes)
		case model.CategoryFocus:
			err = trk.TrackFocus(ctx, date, parseBool(raw), notes)
		}
		return EntrySavedMsg{Err: err}
	}
}

// View renders the week of stars and per-day records.
func (m Model) View() string {
	if m.form != nil {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite).
			MarginBottom(1)
		content := titleStyle.Render("Track Today") + "\n" + m.form.View()
		return lipgloss.NewStyle().Padding(1, 2).Render(content)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	byDate := make(map[string]model.DailySummary, len(m.summaries))
	for _, s := range m.summaries {
		byDate[s.Date] = s
	}

	var rows []string
	rows = append(rows,
		titleStyle.Render("Progress"),
		theme.HelpStyle.Render(fmt.Sprintf(
			"Sleep goal: %.1fh (+/- to adjust) · n to track today", m.goal,
		)),
		"",
	)

	// Render every day in the window, including empty ones.
	for i := historyDays - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format(model.DateFormat)
		summary := byDate[date]
		rows = append(rows, m.renderDay(date, summary))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(1, 2).
		Render(content)
}

func (m Model) renderDay(date string, summary model.DailySummary) string {
	stars := renderStars(summary.Stars)

	var details []string
	for _, r := range summary.Records {
		label := theme.CategoryStyle(string(r.Category)).Render(string(r.Category))
		switch r.Category {
		case model.CategorySleep:
			details = append(details, fmt.Sprintf("%s %.1fh", label, r.Value))
		case model.CategoryMindfulness:
			details = append(details, fmt.Sprintf("%s %.0fm", label, r.Value))
		case model.CategoryFocus:
			if r.Achieved {
				details = append(details, label+" done")
			} else {
				details = append(details, label+" missed")
			}
		}
	}

	line := fmt.Sprintf("%s  %s  %s", date, stars, strings.Join(details, " "))
	return theme.ListItemStyle.Render(line)
}

// renderStars draws the 0-3 achievement stars for a day.
func renderStars(stars int) string {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		if i < stars {
			b.WriteString(theme.StarStyle.Render("★"))
		} else {
			b.WriteString(theme.DimStarStyle.Render("☆"))
		}
	}
	return b.String()
}

// SetSize updates the view dimensions.
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

func validateValue(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Value is required")
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "done":
		return true
	}
	return false
}
