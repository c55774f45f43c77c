// Package styles provides the color theme for the dokita TUI.
package styles

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme holds the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase   color.Color
	FgMuted  color.Color
	FgSubtle color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	styles *Styles
}

// Styles are pre-built lipgloss styles derived from the theme palette.
type Styles struct {
	Title   lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Primary lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
}

// S returns the pre-built styles for the theme, building them on first use.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = &Styles{
			Title:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
			Text:    lipgloss.NewStyle().Foreground(t.FgBase),
			Muted:   lipgloss.NewStyle().Foreground(t.FgMuted),
			Subtle:  lipgloss.NewStyle().Foreground(t.FgSubtle),
			Primary: lipgloss.NewStyle().Foreground(t.Primary),
			Accent:  lipgloss.NewStyle().Foreground(t.Accent),
			Success: lipgloss.NewStyle().Foreground(t.Success),
			Error:   lipgloss.NewStyle().Foreground(t.Error),
			Warning: lipgloss.NewStyle().Foreground(t.Warning),
			Info:    lipgloss.NewStyle().Foreground(t.Info),
		}
	}
	return t.styles
}

// ParseHex converts a hex color string to a color value.
func ParseHex(hex string) color.Color {
	return lipgloss.Color(hex)
}

var (
	currentTheme *Theme
	themeMu      sync.Mutex
)

// CurrentTheme returns the active theme, initializing the default on first
// use.
func CurrentTheme() *Theme {
	themeMu.Lock()
	defer themeMu.Unlock()

	if currentTheme == nil {
		currentTheme = NewDefaultTheme()
	}
	return currentTheme
}

// SetTheme replaces the active theme.
func SetTheme(t *Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}
