//go:build acceptance

// Package acceptance contains black-box CLI acceptance tests (TestA_*).
// Run with: go test -tags=acceptance ./test/acceptance/...
package acceptance

import (
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// cmsinfoBinary is the path to the cmsinfo binary.
// Set via CMSINFO_BINARY env var or default to ./bin/cmsinfo in the repo root.
var cmsinfoBinary string

func init() {
	if bin := os.Getenv("CMSINFO_BINARY"); bin != "" {
		cmsinfoBinary = bin
	} else {
		// Default: look for binary in repo root
		cmsinfoBinary = "../../bin/cmsinfo"
	}
}

// runCmsinfo executes the cmsinfo CLI with the given arguments and returns stdout.
// Fails the test if the command returns a non-zero exit code.
func runCmsinfo(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(cmsinfoBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		t.Fatalf("cmsinfo %s failed: %v\nstderr: %s\nstdout: %s",
			strings.Join(args, " "), err, stderr.String(), stdout.String())
	}
	return stdout.String()
}

// runCmsinfoExpectError executes cmsinfo and expects it to fail.
// Returns the combined output (stdout + stderr).
func runCmsinfoExpectError(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(cmsinfoBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		t.Fatalf("cmsinfo %s expected to fail but succeeded\nstdout: %s",
			strings.Join(args, " "), stdout.String())
	}
	return stdout.String() + stderr.String()
}

// assertOutputContains fails if output does not contain expected.
func assertOutputContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("output does not contain %q\noutput: %s", expected, output)
	}
}

// writeTestFile writes content to a temp file and returns its path.
func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer func() { _ = ln.Close() }()
	return ln.Addr().(*net.TCPAddr).Port
}

// execCommandContext wraps exec.CommandContext for background processes.
func execCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
