package event

import (
	"runtime"
	"strings"
)

// pkgPath is this package's import path, used to skip internal frames
// when inferring an event source. Subpackages such as the events
// catalog are skipped too; their constructors are plumbing, not sources.
const pkgPath = "github.com/inkwright/inkwright/internal/event"

// callerSource walks the call stack and returns a short name for the
// first function outside this package, such as "state.(*Manager).Set".
// Best effort; returns "unknown" when nothing usable is found.
func callerSource() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return "unknown"
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if fn != "" && !strings.HasPrefix(fn, pkgPath+".") && !strings.HasPrefix(fn, pkgPath+"/") {
			return shortFuncName(fn)
		}
		if !more {
			break
		}
	}
	return "unknown"
}

// shortFuncName trims the directory part of a fully qualified function
// name, leaving "pkg.Func" or "pkg.(*Type).Method".
func shortFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		return full[i+1:]
	}
	return full
}
