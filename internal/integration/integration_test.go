package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleInstallsAndRemoves(t *testing.T) {
	home := t.TempDir()
	rc := filepath.Join(home, ".bashrc")
	require.NoError(t, os.WriteFile(rc, []byte("export EDITOR=vi\n"), 0o644))

	msg, err := Toggle("bash", home, "/usr/local/bin/zollpilot", nil)
	require.NoError(t, err)
	assert.Contains(t, msg, "installed")

	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "export EDITOR=vi\n"+beginMarker))
	assert.Contains(t, string(data), `source <("/usr/local/bin/zollpilot" completion bash)`)

	msg, err = Toggle("bash", home, "/usr/local/bin/zollpilot", nil)
	require.NoError(t, err)
	assert.Contains(t, msg, "removed")

	data, err = os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vi\n", string(data))
}

func TestToggleExplicitFlags(t *testing.T) {
	home := t.TempDir()
	yes, no := true, false

	msg, err := Toggle("zsh", home, "zollpilot", &no)
	require.NoError(t, err)
	assert.Contains(t, msg, "not installed")

	_, err = Toggle("zsh", home, "zollpilot", &yes)
	require.NoError(t, err)
	msg, err = Toggle("zsh", home, "zollpilot", &yes)
	require.NoError(t, err)
	assert.Contains(t, msg, "already installed")

	data, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), beginMarker))
}

func TestToggleFishCreatesConfigDir(t *testing.T) {
	home := t.TempDir()
	_, err := Toggle("fish", home, "zollpilot", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".config", "fish", "config.fish"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"zollpilot" completion fish | source`)
}
