package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiblancher/cmsinfo/internal/audit"
)

// writeAuditLog records n inspections into a fresh log and returns its path.
func writeAuditLog(t *testing.T, tc *testContext, n int) string {
	t.Helper()
	path := tc.path("audit.jsonl")
	w, err := audit.NewFileWriter(path)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		ev := audit.NewEvent(audit.EventCMSInspect, audit.ResultSuccess).
			WithObject(audit.Object{Type: "cms", Digest: audit.Digest([]byte{byte(i)}), Size: 1}).
			WithContext(audit.Context{ContentType: "SignedData", Mode: "cms", Source: "cli"})
		require.NoError(t, w.Write(ev))
	}
	require.NoError(t, w.Close())
	return path
}

// =============================================================================
// Audit Verify Tests
// =============================================================================

func TestF_Audit_Verify_LogNotFound(t *testing.T) {
	tc := newTestContext(t)

	_, err := executeCommand(rootCmd, "audit", "verify", "--log", tc.path("nonexistent.jsonl"))
	assert.Error(t, err)
}

func TestF_Audit_Verify_EmptyLog(t *testing.T) {
	tc := newTestContext(t)
	logPath := tc.writeFile("audit.jsonl", nil)

	out, err := executeCommand(rootCmd, "audit", "verify", "--log", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Total events: 0")
}

func TestF_Audit_Verify_ValidLog(t *testing.T) {
	tc := newTestContext(t)
	logPath := writeAuditLog(t, tc, 3)

	out, err := executeCommand(rootCmd, "audit", "verify", "--log", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "VERIFICATION PASSED")
	assert.Contains(t, out, "Total events: 3")
}

func TestF_Audit_Verify_Tampered(t *testing.T) {
	tc := newTestContext(t)
	logPath := writeAuditLog(t, tc, 3)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), "SignedData", "EnvelopedData", 1)
	require.NoError(t, os.WriteFile(logPath, []byte(tampered), 0644))

	out, err := executeCommand(rootCmd, "audit", "verify", "--log", logPath)
	require.Error(t, err)
	assert.Contains(t, out, "VERIFICATION FAILED")
	assert.Contains(t, out, "Valid events: 0")
}

func TestF_Audit_Verify_RecordsVerification(t *testing.T) {
	tc := newTestContext(t)
	logPath := writeAuditLog(t, tc, 2)
	ownLog := tc.path("own.jsonl")

	_, err := executeCommand(rootCmd, "--audit-log", ownLog, "audit", "verify", "--log", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(ownLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"AUDIT_VERIFY"`)
	assert.Contains(t, string(data), "2 events verified")
}

func TestF_Audit_Verify_MissingFlag(t *testing.T) {
	newTestContext(t)
	_, err := executeCommand(rootCmd, "audit", "verify")
	assert.Error(t, err)
}

// =============================================================================
// Audit Tail Tests
// =============================================================================

func TestF_Audit_Tail_LogNotFound(t *testing.T) {
	tc := newTestContext(t)

	_, err := executeCommand(rootCmd, "audit", "tail", "--log", tc.path("nonexistent.jsonl"))
	assert.Error(t, err)
}

func TestF_Audit_Tail_EmptyLog(t *testing.T) {
	tc := newTestContext(t)
	logPath := tc.writeFile("audit.jsonl", nil)

	out, err := executeCommand(rootCmd, "audit", "tail", "--log", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Audit log is empty")
}

func TestF_Audit_Tail_WithNumFlag(t *testing.T) {
	tc := newTestContext(t)
	logPath := writeAuditLog(t, tc, 5)

	out, err := executeCommand(rootCmd, "audit", "tail", "--log", logPath, "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "CMS_INSPECT"))
	assert.Contains(t, out, "content_type=SignedData")
	assert.Contains(t, out, "success")
}

func TestF_Audit_Tail_JSON(t *testing.T) {
	tc := newTestContext(t)
	logPath := writeAuditLog(t, tc, 2)

	out, err := executeCommand(rootCmd, "audit", "tail", "--log", logPath, "--json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[\n"))
	assert.Equal(t, 2, strings.Count(out, `"event_type":"CMS_INSPECT"`))
}

func TestF_Audit_Tail_InvalidLine(t *testing.T) {
	tc := newTestContext(t)
	logPath := tc.writeFile("audit.jsonl", []byte("not json\n"))

	out, err := executeCommand(rootCmd, "audit", "tail", "--log", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[WARN] unreadable event:")
}
