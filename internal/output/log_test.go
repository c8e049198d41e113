package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetupLogging(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetupLoggingVerbose(t *testing.T) {
	buf := capture(t)
	SetupLogging(true)

	Debug("stage finished", "stage", "render")
	assert.Contains(t, buf.String(), "stage finished")
	assert.Contains(t, buf.String(), "stage=render")
}

func TestSetupLoggingQuiet(t *testing.T) {
	buf := capture(t)
	SetupLogging(false)

	Debug("hidden")
	Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetupLoggingKeepsOutput(t *testing.T) {
	buf := capture(t)
	SetupLogging(true)
	SetupLogging(false)

	Info("still captured")
	assert.Contains(t, buf.String(), "still captured")
}
