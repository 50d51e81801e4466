package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devgpu/stackctl/internal/logging"
)

func TestExecuteRejectsUnknownActionBeforeConfig(t *testing.T) {
	// A config file that would fail to parse: the action check must run
	// before configuration is ever read.
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "stackctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("stackName: [unclosed\n"), 0o644))

	err := Execute([]string{"--action", "destroy", "--config", cfgPath}, logging.NewLogger(io.Discard, logging.LevelError))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "destroy"`)
}

func TestExecuteReusesProvidedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.LevelDebug)

	err := Execute([]string{"--action", "destroy"}, logger)
	require.Error(t, err)

	// Without a --log-level override the logger handed to Execute keeps
	// receiving records after flag parsing.
	assert.Contains(t, buf.String(), "logger initialized")
}
