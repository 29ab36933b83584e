// Package callsite captures in-process call stacks for exemption checks.
// Embedding hosts that run substitution inside a scripted environment supply
// their own CallSiteSource with URL-shaped frames; this source covers native
// Go callers, rendering each frame as function@file:line:column so the
// engine's extraction sees a uniform shape. Go frames carry no column, it is
// reported as 1.
package callsite

import (
	"fmt"
	"runtime"
)

// maxDepth bounds a single capture. Stacks past this depth cannot influence
// exemption decisions.
const maxDepth = 64

// Source captures the caller's stack via the runtime.
type Source struct {
	// Skip drops additional frames beyond the capture machinery itself,
	// letting wrappers hide their own frames from the policy check.
	Skip int
}

// New returns a Source that reports the immediate caller first.
func New() *Source {
	return &Source{}
}

// CallSites returns the current stack, most recent call first.
func (s *Source) CallSites() []string {
	pc := make([]uintptr, maxDepth)
	// Skip runtime.Callers and CallSites itself.
	n := runtime.Callers(2+s.Skip, pc)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pc[:n])
	sites := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		sites = append(sites, fmt.Sprintf("%s@%s:%d:1", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return sites
}
