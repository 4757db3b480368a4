// Package ui provides reusable rendering components for minkspec commands.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AshkanYarmoradi/minkspec/cli/styles"
)

// Table collects rows and renders them with a rounded border.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table with headers. A table without headers
// renders as a plain key/value grid.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table string.
func (t *Table) Render() string {
	if len(t.rows) == 0 && len(t.headers) == 0 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(styles.Text).Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(t.rows...)

	if hasHeaders(t.headers) {
		tbl = tbl.Headers(t.headers...)
	}

	return tbl.Render()
}

func hasHeaders(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return true
		}
	}
	return false
}

// StatusBadge returns a styled badge for a scenario outcome or check result.
func StatusBadge(status string) string {
	badge := lipgloss.NewStyle().Padding(0, 1)

	switch strings.ToLower(status) {
	case "success", "ok", "valid", "passed":
		badge = badge.Background(styles.Success).Foreground(lipgloss.Color("#000000"))
	case "failure", "warning", "skipped":
		badge = badge.Background(styles.Warning).Foreground(lipgloss.Color("#000000"))
	case "error", "invalid", "failed":
		badge = badge.Background(styles.Error).Foreground(lipgloss.Color("#FFFFFF"))
	default:
		badge = badge.Background(styles.Surface).Foreground(styles.Text)
	}

	return badge.Render(status)
}

// Banner returns the one-line minkspec banner.
func Banner() string {
	return styles.IconSpec + " " +
		lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render("minkspec") +
		" " + styles.Muted.Render("- Given/When/Then scenarios for message processors")
}

// ListItems formats a list of items with bullets.
func ListItems(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(styles.Indent.Render(styles.InfoStyle.Render(styles.IconDot) + " " + item))
		sb.WriteString("\n")
	}
	return sb.String()
}

// NumberedList formats a numbered list.
func NumberedList(items []string) string {
	var sb strings.Builder
	num := lipgloss.NewStyle().Foreground(styles.Primary).Width(4)
	for i, item := range items {
		sb.WriteString(num.Render(fmt.Sprintf("%d.", i+1)))
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
