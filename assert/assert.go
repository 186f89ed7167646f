package assert

import "github.com/bloeys/nmage-pbr/logging"

// T panics with the formatted message if check is false. It does nothing in release builds.
func T(check bool, msg string, args ...any) {

	if isDebug && !check {
		logging.ErrLog.Panicf("Assert failed: "+msg, args...)
	}
}
