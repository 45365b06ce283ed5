package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lullapp/lull/internal/audiocache"
	"github.com/lullapp/lull/internal/keys"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/player"
	"github.com/lullapp/lull/internal/prefs"
	"github.com/lullapp/lull/internal/sleeptimer"
	"github.com/lullapp/lull/internal/store"
	appsync "github.com/lullapp/lull/internal/sync"
	"github.com/lullapp/lull/internal/tracker"
	"github.com/lullapp/lull/internal/ui"
	"github.com/lullapp/lull/internal/ui/command"
	configview "github.com/lullapp/lull/internal/ui/config"
	helpview "github.com/lullapp/lull/internal/ui/help"
	"github.com/lullapp/lull/internal/ui/journalview"
	"github.com/lullapp/lull/internal/ui/progressview"
	"github.com/lullapp/lull/internal/ui/soundlist"
	"github.com/lullapp/lull/internal/ui/timerview"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewSounds ViewState = iota
	ViewTimer
	ViewProgress
	ViewJournal
	ViewHelp
	ViewCommand
	ViewSettings
)

// playerStateMsg carries a playback snapshot from the state holder.
type playerStateMsg struct {
	snap player.Snapshot
}

// timerStateMsg carries a sleep timer snapshot from the coordinator.
type timerStateMsg struct {
	snap sleeptimer.Snapshot
}

// playResultMsg reports the outcome of loading an item into the player.
type playResultMsg struct {
	err error
}

// positionTickMsg refreshes the player bar while something is playing.
type positionTickMsg struct{}

// Deps bundles the shared services built by the composition root.
// Every view receives them by injection; nothing in the UI reaches for
// package-level state.
type Deps struct {
	Store   *store.SQLiteStore
	Prefs   *prefs.Prefs
	Cache   *audiocache.Manager
	Player  *player.Player
	Timer   *sleeptimer.Coordinator
	Tracker *tracker.Service

	// Poller is nil when health sync is disabled.
	Poller *appsync.Poller

	// Catalog is the loaded content catalog.
	Catalog []model.ContentItem

	// PlayerCommand is the external media player binary (mpv).
	PlayerCommand string

	// Config and ConfigPath back the settings view.
	Config     *model.AppConfig
	ConfigPath string
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the bridge between the observable services and the message loop.
type Model struct {
	deps Deps
	keys *keys.KeyMap

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	soundList    soundlist.Model
	timerView    timerview.Model
	progressView progressview.Model
	journalView  journalview.Model
	helpView     helpview.Model
	commandView  command.Model
	configView   configview.Model

	// eventCh receives snapshots pushed by the player and timer
	// subscribers, plus download progress from the library view.
	eventCh chan tea.Msg
	unsubs  []func()

	playerSnap    player.Snapshot
	timerSnap     sleeptimer.Snapshot
	statusMessage string
}

// New creates the root model and subscribes to the shared services.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()

	eventCh := make(chan tea.Msg, 32)
	push := func(msg tea.Msg) {
		select {
		case eventCh <- msg:
		default:
			// Drop rather than block a notifying service.
		}
	}

	m := Model{
		deps:         deps,
		keys:         k,
		currentView:  ViewSounds,
		eventCh:      eventCh,
		soundList:    soundlist.New(deps.Catalog, deps.Cache, deps.Prefs, k, push, 80, 24),
		timerView:    timerview.New(deps.Timer, k, 80, 24),
		progressView: progressview.New(deps.Tracker, k, 80, 24),
		journalView:  journalview.New(deps.Store, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		configView:   configview.New(deps.Config, deps.ConfigPath, 80, 24),
		playerSnap:   deps.Player.Snapshot(),
		timerSnap:    deps.Timer.Snapshot(),
	}

	m.unsubs = append(m.unsubs,
		deps.Player.Subscribe(func(snap player.Snapshot) {
			push(playerStateMsg{snap: snap})
		}),
		deps.Timer.Subscribe(func(snap sleeptimer.Snapshot) {
			push(timerStateMsg{snap: snap})
		}),
	)

	return m
}

// Init loads the initial data and starts the background services.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.progressView.Load(),
		m.journalView.Load(),
		m.waitForEvent(),
	}
	if m.deps.Poller != nil {
		cmds = append(cmds, m.deps.Poller.Start())
	}
	return tea.Batch(cmds...)
}

// waitForEvent returns a tea.Cmd that delivers the next pushed event.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// positionTick schedules a player bar refresh one second out.
func positionTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return positionTickMsg{}
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.soundList.SetSize(contentWidth, contentHeight)
		m.timerView.SetSize(contentWidth, contentHeight)
		m.progressView.SetSize(contentWidth, contentHeight)
		m.journalView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.configView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case playerStateMsg:
		m.playerSnap = msg.snap
		cmds := []tea.Cmd{m.waitForEvent()}
		if msg.snap.IsPlaying {
			cmds = append(cmds, positionTick())
		}
		return m, tea.Batch(cmds...)

	case timerStateMsg:
		m.timerSnap = msg.snap
		return m, m.waitForEvent()

	case positionTickMsg:
		if !m.playerSnap.IsPlaying {
			return m, nil
		}
		m.playerSnap = m.deps.Player.Snapshot()
		return m, positionTick()

	case soundlist.DownloadProgressMsg:
		var cmd tea.Cmd
		m.soundList, cmd = m.soundList.Update(msg)
		return m, tea.Batch(cmd, m.waitForEvent())

	case soundlist.DownloadDoneMsg:
		if msg.Err != nil {
			m.statusMessage = fmt.Sprintf("download failed: %v", msg.Err)
		} else {
			m.statusMessage = ""
		}
		var cmd tea.Cmd
		m.soundList, cmd = m.soundList.Update(msg)
		return m, cmd

	case soundlist.PlayRequestMsg:
		return m, m.play(msg.Item)

	case playResultMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("playback failed: %v", msg.err)
		} else {
			m.statusMessage = ""
		}
		return m, nil

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.statusMessage = msg.AuthError.Message
		} else if msg.Error != nil {
			m.statusMessage = fmt.Sprintf("health sync failed: %v", msg.Error)
		} else {
			m.statusMessage = ""
		}

		cmds := []tea.Cmd{m.deps.Poller.WaitForNextResult()}
		if msg.Error == nil && len(msg.Dates) > 0 {
			cmds = append(cmds, m.progressView.Load())
		}
		return m, tea.Batch(cmds...)

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case configview.DoneMsg:
		m.currentView = m.previousView
		return m, nil

	case configview.SavedMsg:
		m.currentView = m.previousView
		if msg.Err != nil {
			m.statusMessage = fmt.Sprintf("saving settings: %v", msg.Err)
		} else {
			m.deps.Config = msg.Config
			m.configView = configview.New(msg.Config, m.deps.ConfigPath, m.layout.ContentWidth(), m.layout.ContentHeight())
			m.statusMessage = "settings saved, restart to apply service changes"
		}
		return m, nil

	case tea.KeyMsg:
		if handled, model, cmd := m.handleGlobalKeys(msg); handled {
			return model, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// inputActive reports whether the active view is capturing free text,
// in which case global single-letter shortcuts must not fire.
func (m Model) inputActive() bool {
	switch m.currentView {
	case ViewSounds:
		return m.soundList.SearchActive()
	case ViewProgress:
		return m.progressView.FormActive()
	case ViewJournal:
		return m.journalView.FormActive() || m.journalView.SearchActive()
	case ViewCommand, ViewSettings:
		return true
	}
	return false
}

// handleGlobalKeys processes keys that work regardless of the current
// view. It reports whether the key was consumed.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, m, m.quit()
	}

	if m.inputActive() {
		// The palette has no input widget for esc, so close it here.
		if m.currentView == ViewCommand && msg.String() == "esc" {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		return true, m, m.quit()

	case ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return true, m, m.commandView.Focus()

	case "c":
		m.previousView = m.currentView
		m.currentView = ViewSettings
		return true, m, m.configView.Init()

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return true, m, nil

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		return false, m, nil

	case "1":
		m.currentView = ViewSounds
		return true, m, nil

	case "2":
		m.currentView = ViewTimer
		return true, m, nil

	case "3":
		m.currentView = ViewProgress
		return true, m, m.progressView.Load()

	case "4":
		m.currentView = ViewJournal
		return true, m, m.journalView.Load()

	case " ":
		if err := m.deps.Player.TogglePlayPause(); err != nil {
			m.statusMessage = fmt.Sprintf("playback: %v", err)
		}
		return true, m, nil

	case "s":
		if err := m.deps.Player.Stop(); err != nil {
			m.statusMessage = fmt.Sprintf("playback: %v", err)
		}
		return true, m, nil

	case "m":
		if err := m.deps.Player.ToggleMute(); err != nil {
			m.statusMessage = fmt.Sprintf("playback: %v", err)
		}
		return true, m, nil

	case "+", "=":
		// The progress view owns +/- for the sleep goal.
		if m.currentView == ViewProgress {
			return false, m, nil
		}
		_ = m.deps.Player.AdjustVolume(m.playerSnap.Volume + 0.1)
		return true, m, nil

	case "-":
		if m.currentView == ViewProgress {
			return false, m, nil
		}
		_ = m.deps.Player.AdjustVolume(m.playerSnap.Volume - 0.1)
		return true, m, nil

	case "r":
		if m.deps.Poller != nil && m.deps.Poller.Available() {
			m.deps.Poller.Refresh()
			m.statusMessage = "health sync requested"
		} else {
			m.statusMessage = "health sync unavailable"
		}
		return true, m, nil
	}

	return false, m, nil
}

// executeCommand runs a command palette entry.
func (m Model) executeCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return m, nil
	}

	switch fields[0] {
	case "timer":
		if len(fields) != 2 {
			m.statusMessage = "usage: timer <minutes>"
			return m, nil
		}
		minutes, err := strconv.Atoi(fields[1])
		if err != nil || minutes <= 0 {
			m.statusMessage = fmt.Sprintf("invalid timer duration %q", fields[1])
			return m, nil
		}
		m.deps.Timer.Start(minutes)
		return m, nil

	case "cancel":
		m.deps.Timer.Cancel()
		return m, nil

	case "goal":
		if len(fields) != 2 {
			m.statusMessage = "usage: goal <hours>"
			return m, nil
		}
		hours, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			m.statusMessage = fmt.Sprintf("invalid goal %q", fields[1])
			return m, nil
		}
		tr := m.deps.Tracker
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tr.SetSleepGoalHours(ctx, hours); err != nil {
				return progressview.EntrySavedMsg{Err: err}
			}
			return progressview.EntrySavedMsg{}
		}

	case "sync":
		if m.deps.Poller != nil && m.deps.Poller.Available() {
			m.deps.Poller.Refresh()
			m.statusMessage = "health sync requested"
		} else {
			m.statusMessage = "health sync unavailable"
		}
		return m, nil

	case "sounds":
		m.currentView = ViewSounds
		return m, nil

	case "progress":
		m.currentView = ViewProgress
		return m, m.progressView.Load()

	case "journal":
		m.currentView = ViewJournal
		return m, m.journalView.Load()

	case "settings":
		m.previousView = m.currentView
		m.currentView = ViewSettings
		return m, m.configView.Init()

	case "quit":
		return m, m.quit()

	default:
		m.statusMessage = fmt.Sprintf("unknown command %q", fields[0])
		return m, nil
	}
}

// quit tears down the background services and exits.
func (m Model) quit() tea.Cmd {
	if m.deps.Poller != nil {
		m.deps.Poller.Stop()
	}
	_ = m.deps.Player.Stop()
	for _, unsub := range m.unsubs {
		unsub()
	}
	return tea.Quit
}

// play resolves the item's audio path and loads it into the player.
// Cached items play from disk; everything else streams while a
// background download fills the cache for next time.
func (m Model) play(item model.ContentItem) tea.Cmd {
	cache := m.deps.Cache
	pl := m.deps.Player
	playerCmd := m.deps.PlayerCommand
	return func() tea.Msg {
		path := cache.PathWithAutoDownload(item.ID, item.AudioURL)

		handle, err := player.StartMPV(playerCmd, path)
		if err != nil {
			return playResultMsg{err: err}
		}
		if err := pl.Load(item, handle); err != nil {
			return playResultMsg{err: err}
		}
		return playResultMsg{}
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewSounds:
		m.soundList, cmd = m.soundList.Update(msg)
	case ViewTimer:
		m.timerView, cmd = m.timerView.Update(msg)
	case ViewProgress:
		m.progressView, cmd = m.progressView.Update(msg)
	case ViewJournal:
		m.journalView, cmd = m.journalView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.configView, cmd = m.configView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("lull", m.headerStatus())
	content := m.renderContent()
	playerBar := m.layout.RenderPlayerBar(m.nowPlaying())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, playerBar, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSounds:
		return m.soundList.View()
	case ViewTimer:
		return m.timerView.View()
	case ViewProgress:
		return m.progressView.View()
	case ViewJournal:
		return m.journalView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.configView.View()
	default:
		return ""
	}
}

// headerStatus returns the right-aligned header fragment: the sleep
// timer countdown when one is running, otherwise the health sync state.
func (m Model) headerStatus() string {
	if m.timerSnap.Active {
		return "⏾ " + timerview.FormatRemaining(m.timerSnap.Remaining)
	}

	if m.deps.Poller == nil {
		return ""
	}
	switch m.deps.Poller.Status().State {
	case appsync.SyncRunning:
		return "syncing"
	case appsync.SyncError:
		return "sync error"
	case appsync.SyncUnavailable:
		return "health off"
	default:
		return "idle"
	}
}

// nowPlaying renders the player bar content.
func (m Model) nowPlaying() string {
	snap := m.playerSnap
	if !snap.IsLoaded || snap.Item == nil {
		return "nothing playing · enter to play a sound"
	}

	icon := "⏸"
	if snap.IsPlaying {
		icon = "▶"
	}

	position := ""
	if snap.Duration > 0 {
		position = fmt.Sprintf(
			" %s/%s",
			formatClock(snap.Position), formatClock(snap.Duration),
		)
	}

	volume := fmt.Sprintf("vol %.0f%%", snap.Volume*100)
	if snap.Muted {
		volume = "muted"
	}

	return fmt.Sprintf("%s %s%s · %s", icon, snap.Item.Title, position, volume)
}

// formatClock renders a duration as m:ss.
func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewSettings:
		return "enter next field | esc cancel"
	case ViewTimer:
		return "enter start | esc cancel | 1-4 views | q quit"
	case ViewProgress:
		return "n track today | +/- sleep goal | r sync | 1-4 views | q quit"
	case ViewJournal:
		return "n new | enter edit | x delete | / search | 1-4 views | q quit"
	default:
		return "enter play | space pause | d download | f favorite | / search | ? help | q quit"
	}
}
