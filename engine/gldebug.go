package engine

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

// Driver chatter about buffer placement, shader recompiles and mip levels that never points at a real problem
var ignoredDebugMessageIds = [...]uint32{131169, 131185, 131218, 131204}

func IsIgnoredDebugMessage(id uint32) bool {

	for i := 0; i < len(ignoredDebugMessageIds); i++ {
		if ignoredDebugMessageIds[i] == id {
			return true
		}
	}

	return false
}

func DebugSourceString(source uint32) string {

	switch source {
	case gl.DEBUG_SOURCE_API:
		return "API"
	case gl.DEBUG_SOURCE_WINDOW_SYSTEM:
		return "Window System"
	case gl.DEBUG_SOURCE_SHADER_COMPILER:
		return "Shader Compiler"
	case gl.DEBUG_SOURCE_THIRD_PARTY:
		return "Third Party"
	case gl.DEBUG_SOURCE_APPLICATION:
		return "Application"
	case gl.DEBUG_SOURCE_OTHER:
		return "Other"
	default:
		return "Unknown"
	}
}

func DebugTypeString(msgType uint32) string {

	switch msgType {
	case gl.DEBUG_TYPE_ERROR:
		return "Error"
	case gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		return "Deprecated Behaviour"
	case gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		return "Undefined Behaviour"
	case gl.DEBUG_TYPE_PORTABILITY:
		return "Portability"
	case gl.DEBUG_TYPE_PERFORMANCE:
		return "Performance"
	case gl.DEBUG_TYPE_MARKER:
		return "Marker"
	case gl.DEBUG_TYPE_PUSH_GROUP:
		return "Push Group"
	case gl.DEBUG_TYPE_POP_GROUP:
		return "Pop Group"
	case gl.DEBUG_TYPE_OTHER:
		return "Other"
	default:
		return "Unknown"
	}
}

func DebugSeverityString(severity uint32) string {

	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		return "High"
	case gl.DEBUG_SEVERITY_MEDIUM:
		return "Medium"
	case gl.DEBUG_SEVERITY_LOW:
		return "Low"
	case gl.DEBUG_SEVERITY_NOTIFICATION:
		return "Notification"
	default:
		return "Unknown"
	}
}

func FormatDebugMessage(source, msgType, id, severity uint32, msg string) string {
	return fmt.Sprintf(
		"OpenGL debug message (%d): %s; Source: %s; Type: %s; Severity: %s",
		id,
		msg,
		DebugSourceString(source),
		DebugTypeString(msgType),
		DebugSeverityString(severity),
	)
}

// debugLogger picks the logger by severity. Nothing the driver reports stops the app.
func debugLogger(severity uint32) *log.Logger {

	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		return logging.ErrLog
	case gl.DEBUG_SEVERITY_MEDIUM, gl.DEBUG_SEVERITY_LOW:
		return logging.WarnLog
	default:
		return logging.InfoLog
	}
}

func glDebugCallback(source, msgType, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {

	if IsIgnoredDebugMessage(id) {
		return
	}

	// Our own debug groups come back as push/pop messages every pass
	if msgType == gl.DEBUG_TYPE_PUSH_GROUP || msgType == gl.DEBUG_TYPE_POP_GROUP {
		return
	}

	debugLogger(severity).Println(FormatDebugMessage(source, msgType, id, severity, message))
}

// enableGlDebugOutput only does something for debug contexts
func enableGlDebugOutput() {

	var flags int32
	gl.GetIntegerv(gl.CONTEXT_FLAGS, &flags)
	if flags&gl.CONTEXT_FLAG_DEBUG_BIT == 0 {
		logging.WarnLog.Println("OpenGL context is not a debug context. Driver debug messages will not be logged")
		return
	}

	gl.Enable(gl.DEBUG_OUTPUT)
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	gl.DebugMessageCallback(glDebugCallback, nil)
	gl.DebugMessageControl(gl.DONT_CARE, gl.DONT_CARE, gl.DONT_CARE, 0, nil, true)
}
