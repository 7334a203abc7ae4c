package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"login", "logout", "whoami", "watch", "logs"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "prefs", "api-url", "debug"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SHELF_API_URL", "")
	t.Setenv("SHELF_LOG_LEVEL", "")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(home, "config.toml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWhoami_NotSignedIn(t *testing.T) {
	_, err := runCLI(t, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestWatch_RequiresSession(t *testing.T) {
	_, err := runCLI(t, "watch", t.TempDir())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "shelf login"), err.Error())
}

func TestLogout_WithoutSession(t *testing.T) {
	out, err := runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
}

func writeLogConfig(t *testing.T, records ...string) string {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "shelf.log")
	require.NoError(t, os.WriteFile(logPath, []byte(strings.Join(records, "\n")+"\n"), 0o644))
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("log_file = %q\n", logPath)), 0o644))
	return cfgPath
}

func runLogs(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	t.Setenv("SHELF_LOG_LEVEL", "")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "logs"}, args...))
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestLogs_PrintsFormattedTail(t *testing.T) {
	cfgPath := writeLogConfig(t,
		`{"level":"info","msg":"navigate","path":"/"}`,
		`{"level":"warn","logger":"watch","msg":"upload failed","file":"a.pdf"}`,
	)

	out := ansi.Strip(runLogs(t, cfgPath, "-n", "1"))
	assert.Equal(t, "WARN  [watch] upload failed file=a.pdf\n", out)
}

func TestLogs_Raw(t *testing.T) {
	record := `{"level":"info","msg":"signed out"}`
	out := runLogs(t, writeLogConfig(t, record), "--raw")
	assert.Equal(t, record+"\n", out)
}

func TestLogs_MissingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("log_file = %q\n", filepath.Join(dir, "none.log"))), 0o644))

	out := runLogs(t, cfgPath)
	assert.Contains(t, out, "No log entries")
}
