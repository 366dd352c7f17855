package colors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredDebugIsGatedByDebugMode(t *testing.T) {
	EnableStructuredLogging()
	defer EnableStructuredLogging()
	SetDebug(false)
	defer SetDebug(false)

	output := captureStderr(t, func() {
		StructuredDebug("colors", "debug_disabled", "skipped", nil, "", nil)
	})
	assert.Empty(t, output)

	SetDebug(true)
	output = captureStderr(t, func() {
		StructuredDebug("colors", "debug_enabled", "written", nil, "", nil)
	})
	assert.Contains(t, output, `"level":"debug"`)
}

func TestStructuredLoggingCanBeDisabled(t *testing.T) {
	SetDebug(true)
	defer SetDebug(false)
	DisableStructuredLogging()
	defer EnableStructuredLogging()

	output := captureStderr(t, func() {
		StructuredInfo("colors", "disabled", "skipped", nil, "", nil)
	})

	assert.Empty(t, output)
}

func TestStructuredLogIsMirroredWithoutDebug(t *testing.T) {
	SetDebug(false)
	rec := &recordingLogger{}
	SetLogger(rec)
	defer SetLogger(nil)

	output := captureStderr(t, func() {
		StructuredWarn("realtime", "connect", "failed", errors.New("refused"), "", map[string]interface{}{"attempt": 2})
	})

	assert.Empty(t, output)
	assert.Equal(t, []string{"warn:connect"}, rec.calls)
}
