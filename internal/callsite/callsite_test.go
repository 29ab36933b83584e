package callsite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallSites_ReportsCaller(t *testing.T) {
	sites := New().CallSites()
	require.NotEmpty(t, sites)
	assert.Contains(t, sites[0], "TestCallSites_ReportsCaller",
		"most recent frame must be the immediate caller")
	assert.Contains(t, sites[0], "callsite_test.go")
}

func TestCallSites_FrameShape(t *testing.T) {
	for _, site := range New().CallSites() {
		assert.Contains(t, site, "@", "frame %q", site)
		assert.Regexp(t, `:\d+:1$`, site, "frame %q", site)
	}
}

func TestCallSites_SkipHidesFrames(t *testing.T) {
	direct := func() []string { return New().CallSites() }
	skipped := func() []string { return (&Source{Skip: 1}).CallSites() }

	ds := direct()
	ss := skipped()
	require.NotEmpty(t, ds)
	require.NotEmpty(t, ss)

	// With one frame skipped the capturing closure disappears.
	assert.False(t, strings.Contains(ss[0], "TestCallSites_SkipHidesFrames.func2"),
		"skipped source must not report its own closure, got %q", ss[0])
}
