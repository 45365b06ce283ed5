package soundlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/theme"
)

// SoundItem wraps a model.ContentItem so it can be used in a bubbles/list.
type SoundItem struct {
	Item       model.ContentItem
	Downloaded bool
	Favorite   bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i SoundItem) FilterValue() string { return i.Item.Title }

// Title returns the item title for the list.
func (i SoundItem) Title() string { return i.Item.Title }

// Description returns a short summary line for the list.
func (i SoundItem) Description() string {
	return i.Item.Description
}

// ItemDelegate implements list.ItemDelegate for rendering sound items.
type ItemDelegate struct {
	// downloading maps content ids to download progress in [0,1].
	// Shared by reference with the soundlist Model so updates are visible.
	downloading map[string]float64

	// bar renders in-flight download progress. Drawn statically with
	// ViewAs; the fraction in the downloading map is the single source
	// of truth, so no animation frames are needed.
	bar progress.Model
}

// newItemDelegate builds the delegate that renders sound rows.
func newItemDelegate(downloading map[string]float64) ItemDelegate {
	bar := progress.New(
		progress.WithSolidFill(theme.ColorYellow.Dark),
		progress.WithWidth(10),
		progress.WithoutPercentage(),
	)
	return ItemDelegate{downloading: downloading, bar: bar}
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single sound list line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(SoundItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	kindBadge := theme.KindStyle(string(si.Item.Kind)).
		Render(kindLabel(si.Item.Kind))

	favorite := " "
	if si.Favorite {
		favorite = theme.StarStyle.Render("♥")
	}

	status := ""
	if fraction, inFlight := d.downloading[si.Item.ID]; inFlight {
		status = " ↓" + d.bar.ViewAs(fraction)
	} else if si.Downloaded {
		status = lipgloss.NewStyle().
			Foreground(theme.ColorGreen).
			Render(" ●")
	} else if !si.Item.Playable() {
		status = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(" (guided)")
	}

	duration := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(formatDuration(si.Item.DurationSec))

	line := fmt.Sprintf(
		"%s %s %s%s  %s",
		favorite, kindBadge, si.Item.Title, status, duration,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// kindLabel returns a short badge label for a content kind.
func kindLabel(kind model.ContentKind) string {
	switch kind {
	case model.KindSleepSound:
		return "SLP"
	case model.KindMeditation:
		return "MED"
	case model.KindFocusSound:
		return "FOC"
	case model.KindBreathing:
		return "BRT"
	default:
		return "???"
	}
}

// formatDuration renders a duration in seconds as m:ss, or ∞ for loops.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "∞"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
