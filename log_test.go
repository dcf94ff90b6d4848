package timerfd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLog(dir, true))
	defer InitLog("", false)

	Debug("debug %d", 1)
	Warning("warn %s", "x")
	Error("boom")

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, ents, 1)

	data, err := os.ReadFile(filepath.Join(dir, ents[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(data), "debug 1")
	require.Contains(t, string(data), "warn x")
	require.Contains(t, string(data), "boom")
}

func TestLogDebugOff(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLog(dir, false))
	defer InitLog("", false)

	Debug("invisible")
	Warning("visible")

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, ents, 1)

	data, err := os.ReadFile(filepath.Join(dir, ents[0].Name()))
	require.NoError(t, err)
	require.NotContains(t, string(data), "invisible")
	require.Contains(t, string(data), "visible")
}
