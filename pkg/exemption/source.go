package exemption

import "strings"

// TraceSource adapts a raw captured stack-trace string, one frame per line,
// into a CallSiteSource. Host adapters that receive trace text from the
// execution environment feed it through here; the engine's URL extraction
// handles the per-frame format.
type TraceSource string

// CallSites splits the trace into frames, dropping blank lines.
func (t TraceSource) CallSites() []string {
	lines := strings.Split(string(t), "\n")
	frames := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			frames = append(frames, line)
		}
	}
	return frames
}

// SourceFunc adapts a plain function into a CallSiteSource.
type SourceFunc func() []string

// CallSites invokes the function.
func (f SourceFunc) CallSites() []string { return f() }
