package engine

import (
	"testing"

	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/stretchr/testify/assert"
)

func TestIgnoredDebugMessages(t *testing.T) {

	for _, id := range []uint32{131169, 131185, 131218, 131204} {
		assert.True(t, IsIgnoredDebugMessage(id), "id %d", id)
	}

	assert.False(t, IsIgnoredDebugMessage(0))
	assert.False(t, IsIgnoredDebugMessage(1282))
}

func TestDebugClassification(t *testing.T) {

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "api", got: DebugSourceString(gl.DEBUG_SOURCE_API), expected: "API"},
		{name: "shader compiler", got: DebugSourceString(gl.DEBUG_SOURCE_SHADER_COMPILER), expected: "Shader Compiler"},
		{name: "unknown source", got: DebugSourceString(0), expected: "Unknown"},
		{name: "error", got: DebugTypeString(gl.DEBUG_TYPE_ERROR), expected: "Error"},
		{name: "performance", got: DebugTypeString(gl.DEBUG_TYPE_PERFORMANCE), expected: "Performance"},
		{name: "unknown type", got: DebugTypeString(0), expected: "Unknown"},
		{name: "high", got: DebugSeverityString(gl.DEBUG_SEVERITY_HIGH), expected: "High"},
		{name: "notification", got: DebugSeverityString(gl.DEBUG_SEVERITY_NOTIFICATION), expected: "Notification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestFormatDebugMessage(t *testing.T) {

	msg := FormatDebugMessage(gl.DEBUG_SOURCE_API, gl.DEBUG_TYPE_ERROR, 1282, gl.DEBUG_SEVERITY_HIGH, "invalid operation")
	assert.Contains(t, msg, "(1282)")
	assert.Contains(t, msg, "invalid operation")
	assert.Contains(t, msg, "Source: API")
	assert.Contains(t, msg, "Type: Error")
	assert.Contains(t, msg, "Severity: High")
}

func TestDebugLoggerBySeverity(t *testing.T) {
	assert.Same(t, logging.ErrLog, debugLogger(gl.DEBUG_SEVERITY_HIGH))
	assert.Same(t, logging.WarnLog, debugLogger(gl.DEBUG_SEVERITY_MEDIUM))
	assert.Same(t, logging.WarnLog, debugLogger(gl.DEBUG_SEVERITY_LOW))
	assert.Same(t, logging.InfoLog, debugLogger(gl.DEBUG_SEVERITY_NOTIFICATION))
}
