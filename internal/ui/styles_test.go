package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestParseANSIColor(t *testing.T) {
	tests := []struct {
		code     string
		expected lipgloss.Color
	}{
		{"31", lipgloss.Color("1")},
		{"96", lipgloss.Color("14")},
		{"212", lipgloss.Color("212")},
		{"#ff8800", lipgloss.Color("#ff8800")},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseANSIColor(tt.code))
		})
	}
}

func TestWithSelection(t *testing.T) {
	s := DefaultStyles()
	styled := s.WithSelection(s.Dim)

	assert.Equal(t, s.SelectedBg, styled.GetBackground())
	assert.Equal(t, s.Dim.GetForeground(), styled.GetForeground())
}

func TestLoadFromConfigKeepsSelectionBackground(t *testing.T) {
	s := DefaultStyles()
	s.LoadFromConfig()

	assert.Equal(t, s.SelectedBg, s.Selected.GetBackground())
	assert.True(t, s.Selected.GetBold())
}
