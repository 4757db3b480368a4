// Package styles provides the terminal styling shared by minkspec commands.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Primary      = lipgloss.Color("#0EA5E9") // Sky
	PrimaryLight = lipgloss.Color("#7DD3FC")
	Success      = lipgloss.Color("#22C55E")
	Warning      = lipgloss.Color("#EAB308")
	Error        = lipgloss.Color("#EF4444")
	Info         = lipgloss.Color("#6366F1")
	Text         = lipgloss.Color("#F8FAFC")
	TextMuted    = lipgloss.Color("#94A3B8")
	Surface      = lipgloss.Color("#1E293B")
	Border       = lipgloss.Color("#334155")
)

// Text styles
var (
	Bold      lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
	Code      lipgloss.Style

	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	InfoStyle    lipgloss.Style

	Box     lipgloss.Style
	InfoBox lipgloss.Style
	Indent  lipgloss.Style
)

// Icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconArrow   = "→"
	IconDot     = "•"
	IconFile    = "📄"
	IconClock   = "⏱"
	IconSpec    = "◆"
)

func init() {
	build()
}

// build derives every style from the current palette.
func build() {
	Bold = lipgloss.NewStyle().Bold(true)
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	Subtitle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryLight)
	Normal = lipgloss.NewStyle().Foreground(Text)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(PrimaryLight)
	Code = lipgloss.NewStyle().Foreground(Warning).Background(Surface).Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(Error)
	InfoStyle = lipgloss.NewStyle().Foreground(Info)

	Box = roundedBox(Border)
	InfoBox = roundedBox(Info).MarginTop(1)
	Indent = lipgloss.NewStyle().PaddingLeft(2)
}

func roundedBox(borderColor lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2)
}

// FormatSuccess formats a success message with icon
func FormatSuccess(msg string) string {
	return SuccessStyle.Render(IconSuccess) + " " + Normal.Render(msg)
}

// FormatError formats an error message with icon
func FormatError(msg string) string {
	return ErrorStyle.Render(IconError) + " " + Normal.Render(msg)
}

// FormatWarning formats a warning message with icon
func FormatWarning(msg string) string {
	return WarningStyle.Render(IconWarning) + " " + Normal.Render(msg)
}

// FormatInfo formats an info message with icon
func FormatInfo(msg string) string {
	return InfoStyle.Render(IconInfo) + " " + Normal.Render(msg)
}

// FormatKeyValue formats a key-value pair
func FormatKeyValue(key, value string) string {
	return Muted.Width(20).Render(key+":") + " " + Highlight.Render(value)
}

// DisableColors clears the palette and rebuilds every style without color.
func DisableColors() {
	for _, c := range []*lipgloss.Color{
		&Primary, &PrimaryLight, &Success, &Warning, &Error,
		&Info, &Text, &TextMuted, &Surface, &Border,
	} {
		*c = lipgloss.Color("")
	}
	build()
}
