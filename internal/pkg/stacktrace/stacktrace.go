// Package stacktrace trims goroutine stacks down to this module's frames.
package stacktrace

import (
	"runtime"
	"strconv"
	"strings"
)

const (
	marker    = "/internal/"
	maxFrames = 64
)

// Internal returns "internal/<path>.go:<line>" for every frame of the
// calling goroutine that lives under an internal/ directory, innermost
// first. skip is relative to the caller of Internal.
func Internal(skip int) []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		frame, more := frames.Next()
		if path, ok := shorten(frame.File); ok {
			out = append(out, path+":"+strconv.Itoa(frame.Line))
		}
		if !more {
			break
		}
	}

	return out
}

func shorten(file string) (string, bool) {
	idx := strings.LastIndex(file, marker)
	if idx == -1 || !strings.HasSuffix(file, ".go") {
		return "", false
	}

	return file[idx+1:], true
}
