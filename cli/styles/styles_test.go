package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{"success", FormatSuccess, IconSuccess},
		{"error", FormatError, IconError},
		{"warning", FormatWarning, IconWarning},
		{"info", FormatInfo, IconInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.format(tt.name + " message")
			assert.Contains(t, result, tt.icon)
			assert.Contains(t, result, tt.name+" message")
		})
	}
}

func TestFormatKeyValue(t *testing.T) {
	result := FormatKeyValue("Seed", "2024-01-01T09:00:00Z")
	assert.Contains(t, result, "Seed:")
	assert.Contains(t, result, "2024-01-01T09:00:00Z")
}

func TestDisableColors(t *testing.T) {
	originalPrimary := Primary
	originalSuccess := Success
	defer func() {
		Primary = originalPrimary
		Success = originalSuccess
		build()
	}()

	DisableColors()

	assert.Equal(t, "", string(Primary))
	assert.Equal(t, "", string(Success))
}

func TestStyles(t *testing.T) {
	assert.NotPanics(t, func() {
		for _, s := range []lipgloss.Style{
			Bold, Title, Subtitle, Normal, Muted, Highlight, Code,
			SuccessStyle, WarningStyle, ErrorStyle, InfoStyle,
			Box, InfoBox, Indent,
		} {
			_ = s.Render("test")
		}
	})
}
