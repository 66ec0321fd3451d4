package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"version", "console", "status", "agents", "projects", "watch", "config"}
	got := make(map[string]bool)
	for _, c := range root.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "missing command %q", name)
	}
}

func TestExecuteSurfacesCommandErrors(t *testing.T) {
	t.Setenv("EMASCOPE_HOME", t.TempDir())

	// SilenceErrors keeps cobra quiet; the error must still reach the
	// caller so main can report it before exiting.
	root := newRootCmd()
	root.SetArgs([]string{"config", "get", "no.such.key"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("FALSE"))
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, 3.5, parseValue("3.5"))
	assert.Equal(t, "hello", parseValue("hello"))
}

func TestConfigRoundTripThroughCLI(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EMASCOPE_HOME", dir)

	root := newRootCmd()
	root.SetArgs([]string{"config", "set", "server.url", "http://backend:9000"})
	require.NoError(t, root.Execute())

	root = newRootCmd()
	root.SetArgs([]string{"config", "get", "server.url"})
	require.NoError(t, root.Execute())

	root = newRootCmd()
	root.SetArgs([]string{"config", "unset", "server.url"})
	require.NoError(t, root.Execute())

	root = newRootCmd()
	root.SetArgs([]string{"config", "get", "server.url"})
	assert.Error(t, root.Execute())
}
