package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns what it wrote
// to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "hdlorder", cmd.Use)
	assert.Contains(t, cmd.Long, "trigger domain")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"domains", "validate", "runs", "show", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestDomainsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	domainsCmd, _, err := cmd.Find([]string{"domains"})
	require.NoError(t, err)

	for _, name := range []string{"tag", "dump-dir", "report", "dump-graph", "db", "metrics-file"} {
		assert.NotNil(t, domainsCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestRunsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runsCmd, _, err := cmd.Find([]string{"runs"})
	require.NoError(t, err)
	assert.NotNil(t, runsCmd.Flags().Lookup("db"))
	assert.NotNil(t, runsCmd.Flags().Lookup("tag"))

	showCmd, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)
	assert.NotNil(t, showCmd.Flags().Lookup("db"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := executeCommand(t, "--format", "invalid", "validate", "testdata/graphs/counter.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// TestRootCommand_ConfigFile tests that config settings reach subcommands.
func TestRootCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hdlorder.yaml")
	dumpDir := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(cfgPath, []byte("report: true\ndump_dir: "+dumpDir+"\n"), 0o644))

	_, _, err := executeCommand(t, "--config", cfgPath, "domains", "testdata/graphs/counter.yaml")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dumpDir, "counter_order_edges.txt"))
}

// TestRootCommand_BadConfig tests that an unreadable config is a command error.
func TestRootCommand_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hdlorder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("no_such_setting: 1\n"), 0o644))

	_, _, err := executeCommand(t, "--config", cfgPath, "validate", "testdata/graphs/counter.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = executeCommand(t, "--config", filepath.Join(dir, "missing.yaml"), "validate", "testdata/graphs/counter.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
