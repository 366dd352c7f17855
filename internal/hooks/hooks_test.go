package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/advising-app/advising-notify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, point, name, body string, mode os.FileMode) string {
	t.Helper()
	hookDir := filepath.Join(dir, point+".d")
	require.NoError(t, os.MkdirAll(hookDir, 0755))
	path := filepath.Join(hookDir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

func newTestRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	r := NewRunner(dir, nil)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r, dir
}

func TestInitCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	r := NewRunner(dir, nil)
	require.NoError(t, r.Init())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunWithoutScripts(t *testing.T) {
	r, _ := newTestRunner(t)
	assert.NoError(t, r.Run(context.Background(), "alert", nil))
}

func TestScriptsAreSortedAndExecutableOnly(t *testing.T) {
	r, dir := newTestRunner(t)
	writeScript(t, dir, "alert", "20-second", "exit 0", 0755)
	writeScript(t, dir, "alert", "10-first", "exit 0", 0755)
	writeScript(t, dir, "alert", "15-disabled", "exit 0", 0644)

	scripts := r.Scripts("alert")
	require.Len(t, scripts, 2)
	assert.Equal(t, "10-first", filepath.Base(scripts[0]))
	assert.Equal(t, "20-second", filepath.Base(scripts[1]))
}

func TestRunExportsEnvironment(t *testing.T) {
	r, dir := newTestRunner(t)
	out := filepath.Join(t.TempDir(), "env.txt")
	writeScript(t, dir, "alert", "dump",
		`echo "$ADVISING_NOTIFY_HOOK_POINT|$ADVISING_NOTIFY_TITLE|$ADVISING_NOTIFY_NOTIFICATION_ID|$ADVISING_NOTIFY_HOOK_TIMESTAMP" > `+out, 0755)

	err := r.Run(context.Background(), "alert", map[string]string{
		"title":           "Appointment confirmed",
		"notification_id": "7",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "alert|Appointment confirmed|7|2026-01-02T03:04:05Z", strings.TrimSpace(string(data)))
}

func TestFailureModes(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
		ranNext bool
	}{
		{FailureAbort, true, false},
		{FailureWarn, false, true},
		{FailureIgnore, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			r, dir := newTestRunner(t)
			r.FailureMode = tt.mode
			marker := filepath.Join(t.TempDir(), "ran")
			writeScript(t, dir, "alert", "01-fail", "echo boom; exit 3", 0755)
			writeScript(t, dir, "alert", "02-mark", "touch "+marker, 0755)

			err := r.Run(context.Background(), "alert", nil)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrHookFailed)
				assert.Contains(t, err.Error(), "01-fail")
				assert.Contains(t, err.Error(), "boom")
			} else {
				require.NoError(t, err)
			}
			_, statErr := os.Stat(marker)
			assert.Equal(t, tt.ranNext, statErr == nil)
		})
	}
}

func TestRunTimesOut(t *testing.T) {
	r, dir := newTestRunner(t)
	r.FailureMode = FailureAbort
	r.Timeout = 100 * time.Millisecond
	writeScript(t, dir, "alert", "slow", "exec sleep 5", 0755)

	start := time.Now()
	err := r.Run(context.Background(), "alert", nil)
	require.ErrorIs(t, err, ErrHookFailed)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestAsyncRun(t *testing.T) {
	r, dir := newTestRunner(t)
	r.Async = true
	marker := filepath.Join(t.TempDir(), "async")
	writeScript(t, dir, "alert", "mark", "touch "+marker, 0755)

	require.NoError(t, r.Run(context.Background(), "alert", nil))
	r.Wait()
	assert.Equal(t, 0, r.Pending())
	_, err := os.Stat(marker)
	assert.NoError(t, err)
}

func TestAsyncLimit(t *testing.T) {
	r, dir := newTestRunner(t)
	r.Async = true
	r.MaxAsync = 1
	writeScript(t, dir, "alert", "01-slow", "sleep 0.3", 0755)
	marker := filepath.Join(t.TempDir(), "skipped")
	writeScript(t, dir, "alert", "02-mark", "touch "+marker, 0755)

	require.NoError(t, r.Run(context.Background(), "alert", nil))
	r.Wait()
	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err))
}

func TestFromConfig(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("ADVISING_NOTIFY_ENV_FILE", filepath.Join(base, "missing.env"))
	t.Setenv("ADVISING_NOTIFY_HOOKS_DIR", filepath.Join(base, "custom-hooks"))
	t.Setenv("ADVISING_NOTIFY_HOOKS_FAILURE_MODE", "abort")
	t.Setenv("ADVISING_NOTIFY_HOOKS_TIMEOUT_SECONDS", "3")
	config.Load()

	r := FromConfig(nil)
	assert.Equal(t, filepath.Join(base, "custom-hooks"), r.Dir)
	assert.Equal(t, FailureAbort, r.FailureMode)
	assert.Equal(t, 3*time.Second, r.Timeout)
}
