package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme of the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Timer colors
	TimerRunning lipgloss.Color
	TimerIdle    lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	// Project tabs
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Task rows
	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	TaskRunning  lipgloss.Style

	// Elapsed time
	Elapsed        lipgloss.Style
	ElapsedRunning lipgloss.Style
	ProjectTotal   lipgloss.Style

	Panel  lipgloss.Style
	Prompt lipgloss.Style

	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Bold(true).
			Padding(0, 1),

		TaskNormal: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TaskSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Padding(0, 1),

		TaskRunning: lipgloss.NewStyle().
			Foreground(t.TimerRunning).
			Bold(true).
			Padding(0, 1),

		Elapsed: lipgloss.NewStyle().
			Foreground(t.TimerIdle),

		ElapsedRunning: lipgloss.NewStyle().
			Foreground(t.TimerRunning).
			Bold(true),

		ProjectTotal: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),

		Prompt: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Gruvbox,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme after the named one, wrapping around
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
