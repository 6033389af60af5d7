package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/nemooon/nc-file-merger/internal/config"
)

// StyleManager encapsulates all report and TUI styles
type StyleManager struct {
	// Report styles
	Title   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	OK      lipgloss.Style
	Dim     lipgloss.Style
	Accent  lipgloss.Style

	// Planner styles
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	On       lipgloss.Style
	Off      lipgloss.Style

	// Chrome styles
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:      lipgloss.NewStyle().Bold(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		OK:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Accent:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Selected:   lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236")),
		Cursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		On:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		Off:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Divider:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg: lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	errColor := parseANSIColor(config.GetColorError())
	warnColor := parseANSIColor(config.GetColorWarning())
	okColor := parseANSIColor(config.GetColorOK())
	dimColor := parseANSIColor(config.GetColorDim())
	accentColor := parseANSIColor(config.GetColorAccent())

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	s.Error = lipgloss.NewStyle().Foreground(errColor)
	s.Warning = lipgloss.NewStyle().Foreground(warnColor)
	s.OK = lipgloss.NewStyle().Foreground(okColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)
	s.Accent = lipgloss.NewStyle().Foreground(accentColor)
	s.Cursor = lipgloss.NewStyle().Foreground(accentColor)
	s.On = lipgloss.NewStyle().Bold(true).Foreground(okColor)
	s.Off = lipgloss.NewStyle().Foreground(dimColor)
	s.Selected = s.WithSelection(lipgloss.NewStyle().Bold(true))
	s.Divider = lipgloss.NewStyle().Foreground(dimColor)
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
