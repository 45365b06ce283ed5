package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorLilac   = lipgloss.AdaptiveColor{Dark: "#B197FC", Light: "#6B46C1"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorLilac).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PlayerBarStyle wraps the now-playing line above the status bar.
var PlayerBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Padding(0, 1).
	Border(lipgloss.NormalBorder(), true, false, false, false).
	BorderForeground(ColorBorder)

// PanelStyle wraps bordered overlay content such as help and the palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorLilac).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorLilac)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// StarStyle renders earned achievement stars.
var StarStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow)

// DimStarStyle renders unearned achievement stars.
var DimStarStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle)

// CategoryStyle returns a color-coded style for a wellness category label.
func CategoryStyle(category string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch category {
	case "sleep":
		return base.Foreground(ColorBlue)
	case "mindfulness":
		return base.Foreground(ColorGreen)
	case "focus":
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// KindStyle returns a color-coded style for a content kind label.
func KindStyle(kind string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch kind {
	case "sleep_sound":
		return base.Foreground(ColorBlue)
	case "meditation":
		return base.Foreground(ColorGreen)
	case "focus_sound":
		return base.Foreground(ColorOrange)
	case "breathing":
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// MoodStyle returns a color-coded style for a journal mood label.
func MoodStyle(mood string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch mood {
	case "great":
		return base.Foreground(ColorGreen)
	case "good":
		return base.Foreground(ColorBlue)
	case "neutral":
		return base.Foreground(ColorGray)
	case "low":
		return base.Foreground(ColorOrange)
	case "rough":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}
