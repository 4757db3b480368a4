package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	t.Run("renders headers and rows", func(t *testing.T) {
		table := NewTable("Setting", "Value")
		table.AddRow("clock.frozen", "true")
		table.AddRow("logging.level", "debug")

		out := table.Render()

		assert.Equal(t, 2, table.Len())
		for _, s := range []string{"Setting", "Value", "clock.frozen", "true", "logging.level", "debug", "╭", "╯"} {
			assert.Contains(t, out, s)
		}
	})

	t.Run("blank headers render rows only", func(t *testing.T) {
		table := NewTable("", "")
		table.AddRow("Version", "dev")

		out := table.Render()

		assert.Contains(t, out, "Version")
		assert.Contains(t, out, "dev")
	})

	t.Run("empty table renders nothing", func(t *testing.T) {
		assert.Empty(t, NewTable().Render())
	})
}

func TestStatusBadge(t *testing.T) {
	for _, status := range []string{"success", "failure", "error", "VALID", "custom"} {
		t.Run(status, func(t *testing.T) {
			assert.Contains(t, StatusBadge(status), status)
		})
	}
}

func TestBanner(t *testing.T) {
	assert.Contains(t, Banner(), "minkspec")
}

func TestLists(t *testing.T) {
	items := []string{"first", "second"}

	bullets := ListItems(items)
	assert.Equal(t, 2, strings.Count(bullets, "\n"))
	assert.Contains(t, bullets, "first")

	numbered := NumberedList(items)
	assert.Contains(t, numbered, "1.")
	assert.Contains(t, numbered, "2.")
	assert.Contains(t, numbered, "second")
}
