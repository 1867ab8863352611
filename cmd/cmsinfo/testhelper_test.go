package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/remiblancher/cmsinfo/internal/audit"
	"github.com/remiblancher/cmsinfo/internal/cli"
)

// executeCommand executes a Cobra command with the given args and returns output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// executeWithStdin is executeCommand with stdin content.
func executeWithStdin(root *cobra.Command, stdin []byte, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(bytes.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// executeMain runs args through execute, the entry point used by main.
func executeMain(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)

	err := execute()
	return buf.String(), err
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

// newTestContext creates a new test context with a temp directory and
// resets global command state.
func newTestContext(t *testing.T) *testContext {
	t.Helper()
	resetGlobalFlags()
	cli.SetColor(false)
	t.Cleanup(func() {
		_ = audit.Close()
		resetGlobalFlags()
	})
	return &testContext{t: t, tempDir: t.TempDir()}
}

// resetGlobalFlags resets the flag variables shared by every command.
func resetGlobalFlags() {
	auditLogPath = ""
	configPath = ""
	verbosity = 0
	inspectMode = ""
	inspectFormat = ""
	inspectLang = ""
	inspectOut = ""
	inspectNoColor = false
	auditLogFile = ""
	auditTailNum = 10
	auditShowJSON = false
	_ = rootCmd.Flags().Set("version", "false")
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name string, content []byte) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}
