package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects stdout and stderr for the duration of the test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return out, errOut
}

func newRegistry() *CommandRegistry {
	r := NewCommandRegistry(VersionInfo{Version: "1.2.3", Commit: "abc", Date: "today"})
	registerCommands(r)
	return r
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExecute_NoCommand(t *testing.T) {
	_, errOut := capture(t)
	err := newRegistry().Execute(nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "COMMANDS:")
}

func TestExecute_UnknownCommand(t *testing.T) {
	capture(t)
	err := newRegistry().Execute([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestHelp_ListsCommandsInOrder(t *testing.T) {
	out, _ := capture(t)
	require.NoError(t, newRegistry().Execute([]string{"help"}))

	help := out.String()
	for _, name := range []string{"serve", "migrate", "purge", "validate", "version", "help"} {
		assert.Contains(t, help, name)
	}
	assert.Less(t, bytes.Index(out.Bytes(), []byte("serve")), bytes.Index(out.Bytes(), []byte("migrate")))
}

func TestHelp_ForCommand(t *testing.T) {
	out, _ := capture(t)
	require.NoError(t, newRegistry().Execute([]string{"help", "purge"}))
	assert.Contains(t, out.String(), "todoapi purge [--config path]")
}

func TestVersion(t *testing.T) {
	out, _ := capture(t)
	require.NoError(t, newRegistry().Execute([]string{"version"}))
	assert.Contains(t, out.String(), "todoapi 1.2.3 (commit: abc, built: today")
}

func TestValidate(t *testing.T) {
	out, _ := capture(t)
	path := writeConfig(t, "todoapi.yaml", "store:\n  driver: memory\nitems:\n  undo_window: 7s\n")

	require.NoError(t, newRegistry().Execute([]string{"validate", path}))
	assert.Contains(t, out.String(), "is valid")
	assert.Contains(t, out.String(), "7s")
}

func TestValidate_Invalid(t *testing.T) {
	capture(t)
	path := writeConfig(t, "todoapi.yaml", "store:\n  driver: sqlite\n")
	err := newRegistry().Execute([]string{"validate", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidate_MissingPath(t *testing.T) {
	capture(t)
	assert.Error(t, newRegistry().Execute([]string{"validate"}))
}

func TestPurge_MemoryStore(t *testing.T) {
	out, _ := capture(t)
	path := writeConfig(t, "todoapi.toml", "[store]\ndriver = \"memory\"\n\n[log]\nlevel = \"error\"\n")
	require.NoError(t, newRegistry().Execute([]string{"purge", "--config", path}))
	assert.Equal(t, "purged 0 item(s)\n", out.String())
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	capture(t)
	path := writeConfig(t, "todoapi.yaml", "store:\n  driver: memory\n")
	err := newRegistry().Execute([]string{"migrate", "--config", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate requires")
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTableWriter([]string{"Migration", "State"})
	tw.AddRow("0001_create_lists.sql", "applied")
	tw.Print(&buf)
	assert.Contains(t, buf.String(), "│ 0001_create_lists.sql │ applied │")
}
