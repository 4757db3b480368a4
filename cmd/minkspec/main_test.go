package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshkanYarmoradi/minkspec/cli/commands"
)

func TestBuildDefaults(t *testing.T) {
	assert.Equal(t, "dev", version)
	assert.Equal(t, "none", commit)
	assert.Equal(t, "unknown", buildDate)
}

func TestVersionReachesCommand(t *testing.T) {
	orig := commands.Version
	t.Cleanup(func() { commands.Version = orig })

	commands.Version = "v9.9.9-test"

	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-color", "version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "v9.9.9-test")
}
