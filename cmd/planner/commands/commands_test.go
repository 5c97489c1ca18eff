package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_FEED", "memory")
	t.Setenv("EXPORTS_STORAGE_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestResetRequiresConfirmation(t *testing.T) {
	memoryEnv(t)
	cmd := NewResetCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestResetWithConfirmation(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer
	cmd := NewResetCommand()
	cmd.SetArgs([]string{"--yes"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "cleared")
}

func TestExportToStdout(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer
	cmd := NewExportCommand()
	cmd.SetArgs([]string{"--out", "-"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc, "tasks")
	assert.Contains(t, doc, "exams")
	assert.Contains(t, doc, "settings")
}

func TestExportCSVToFile(t *testing.T) {
	dir := memoryEnv(t)
	path := filepath.Join(dir, "tasks.csv")
	var out bytes.Buffer
	cmd := NewExportCommand()
	cmd.SetArgs([]string{"--format", "csv", "--out", path})
	cmd.SetOut(&out)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "exported "+path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	memoryEnv(t)
	cmd := NewExportCommand()
	cmd.SetArgs([]string{"--format", "xml", "--out", "-"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestScanWithNoTasks(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer
	cmd := NewScanCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&out)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "0 reminder(s) sent")
}
