// Package exemption decides, per protected feature, whether interception
// should be bypassed for the current caller. Exemptions exist so that known
// third-party scripts with documented compatibility bugs can reach the native
// API while the page's own code keeps seeing substitutes.
package exemption

import (
	"fmt"
	"regexp"
	"sync"
)

// CallSiteSource yields the source locations of the live call stack, most
// recent frame first. The literal frame format is host-specific; the engine
// only extracts HTTP(S) URLs out of whatever text the source produces.
// Capture must happen synchronously at call time, a deferred capture would
// observe the wrong caller.
type CallSiteSource interface {
	CallSites() []string
}

// frameExpr extracts a caller URL with line and column from one stack frame,
// optionally wrapped in parentheses.
var frameExpr = regexp.MustCompile(`\(?(https?://[^\s()]+?):\d+:\d+\)?`)

// Engine holds the compiled exemption lists and the process-wide debug flag.
// Both are written by Configure and read thereafter; Configure replaces the
// previous configuration wholesale. Reconfiguring while interception traffic
// is in flight is last-writer-wins, not atomic across checks.
type Engine struct {
	mu     sync.RWMutex
	lists  map[string][]*regexp.Regexp
	debug  bool
	source CallSiteSource
}

// NewEngine constructs an Engine with no exemptions configured. The source
// supplies call stacks for method checks; a nil source disables stack-based
// exemption entirely (every method check answers "not exempt").
func NewEngine(source CallSiteSource) *Engine {
	return &Engine{
		lists:  map[string][]*regexp.Regexp{},
		source: source,
	}
}

// Configure compiles the supplied pattern lists and installs them together
// with the debug flag, discarding any prior configuration. An invalid pattern
// fails the whole call and leaves the previous configuration in place; a
// pattern that cannot compile is a deployment mistake, not something to skip.
// An empty or nil mapping is valid and exempts nothing.
func (e *Engine) Configure(patterns map[string][]string, debug bool) error {
	lists := make(map[string][]*regexp.Regexp, len(patterns))
	for feature, raw := range patterns {
		compiled := make([]*regexp.Regexp, 0, len(raw))
		for _, pattern := range raw {
			expr, err := regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("exemption: invalid pattern %q for feature %s: %w", pattern, feature, err)
			}
			compiled = append(compiled, expr)
		}
		lists[feature] = compiled
	}

	e.mu.Lock()
	e.lists = lists
	e.debug = debug
	e.mu.Unlock()
	return nil
}

// Debug reports whether interception events should be reported.
func (e *Engine) Debug() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.debug
}

// IsURLExempt reports whether any configured pattern for feature matches url.
// Patterns are scanned in configured order and the first match wins; an
// unknown feature exempts nothing.
func (e *Engine) IsURLExempt(feature, url string) bool {
	e.mu.RLock()
	patterns := e.lists[feature]
	e.mu.RUnlock()
	return matchAny(patterns, url)
}

// IsMethodExempt reports whether the current call stack contains a caller
// exempt for feature. A feature with zero configured patterns returns false
// before the stack is touched; stack capture is the expensive path and is
// skipped whenever it cannot change the answer. Each URL extracted from the
// stack is tested at most once per check. Any failure while capturing or
// parsing the stack answers false: on internal error the protection stays
// active.
func (e *Engine) IsMethodExempt(feature string) (exempt bool) {
	e.mu.RLock()
	patterns := e.lists[feature]
	source := e.source
	e.mu.RUnlock()

	if len(patterns) == 0 || source == nil {
		return false
	}

	defer func() {
		if recover() != nil {
			exempt = false
		}
	}()

	seen := map[string]struct{}{}
	for _, frame := range source.CallSites() {
		m := frameExpr.FindStringSubmatch(frame)
		if m == nil {
			continue
		}
		url := m[1]
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		if matchAny(patterns, url) {
			return true
		}
	}
	return false
}

func matchAny(patterns []*regexp.Regexp, url string) bool {
	for _, expr := range patterns {
		if expr.MatchString(url) {
			return true
		}
	}
	return false
}
