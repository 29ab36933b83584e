// Package intercept is the single chokepoint every protected native
// capability is routed through. A Binding pairs the untouched native callable
// with its substitute; each invocation asks the exemption policy which path
// runs and, in debug mode, emits a structured record of the decision.
// Installing the binding in place of the original callable is the host
// adapter's job; the adapter must keep the installed callable's textual
// representation indistinguishable from the original.
package intercept

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/veilware/veilcore/pkg/report"
	"github.com/veilware/veilcore/pkg/telemetry"
)

// Callable is the shape of both native and substitute implementations.
type Callable func(args ...any) (any, error)

// Policy is the decision surface a Binding consults on every call.
type Policy interface {
	IsMethodExempt(feature string) bool
	Debug() bool
}

// Installer places a callable into the live object graph at the given member,
// replacing the original. Implementations live in environment-specific
// adapters and own the opaque-identity requirement.
type Installer interface {
	Install(member string, callable Callable) error
}

var (
	// ErrNoNative is returned by NewBinding when the native callable is missing.
	ErrNoNative = errors.New("intercept: native callable is required")
	// ErrNoSubstitute is returned by NewBinding when the substitute is missing.
	ErrNoSubstitute = errors.New("intercept: substitute callable is required")
	// ErrNoPolicy is returned by NewBinding when no policy engine is supplied.
	ErrNoPolicy = errors.New("intercept: policy engine is required")
)

// Options configures a Binding. Feature names the protected capability for
// policy lookups; Member is the object property being wrapped, used only for
// reporting. Reporter, Metrics, PageURL, and Stack are optional.
type Options struct {
	Feature    string
	Member     string
	Native     Callable
	Substitute Callable
	Policy     Policy
	Reporter   report.Reporter
	Metrics    *telemetry.Metrics

	// PageURL yields the current page location for debug records.
	PageURL func() string
	// Stack yields the captured call stack for debug records.
	Stack func() []string
}

// Binding routes calls to one protected capability. Created once per
// intercepted API and never torn down explicitly; it lives as long as the
// page that installed it.
type Binding struct {
	feature    string
	member     string
	native     Callable
	substitute Callable
	policy     Policy
	reporter   report.Reporter
	metrics    *telemetry.Metrics
	pageURL    func() string
	stack      func() []string
}

// NewBinding validates opts and constructs a Binding.
func NewBinding(opts Options) (*Binding, error) {
	if opts.Feature == "" {
		return nil, fmt.Errorf("intercept: feature name is required")
	}
	if opts.Native == nil {
		return nil, ErrNoNative
	}
	if opts.Substitute == nil {
		return nil, ErrNoSubstitute
	}
	if opts.Policy == nil {
		return nil, ErrNoPolicy
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = report.NopReporter{}
	}

	return &Binding{
		feature:    opts.Feature,
		member:     opts.Member,
		native:     opts.Native,
		substitute: opts.Substitute,
		policy:     opts.Policy,
		reporter:   reporter,
		metrics:    opts.Metrics,
		pageURL:    opts.PageURL,
		stack:      opts.Stack,
	}, nil
}

// Feature returns the protected capability name.
func (b *Binding) Feature() string { return b.feature }

// Member returns the wrapped object member.
func (b *Binding) Member() string { return b.member }

// Invoke routes one call. Exempt callers reach the native callable and its
// result, including any error, passes through verbatim; everyone else gets
// the substitute. Reporting is fire-and-forget and can never fail the call.
func (b *Binding) Invoke(args ...any) (any, error) {
	return b.InvokeContext(context.Background(), args...)
}

// InvokeContext is Invoke with a caller context: the routing outcome is
// additionally recorded on the OTel meter and, when ctx carries a recording
// span, attached to it as a span event.
func (b *Binding) InvokeContext(ctx context.Context, args ...any) (any, error) {
	exempt := b.policy.IsMethodExempt(b.feature)

	action := report.ActionRestrict
	if exempt {
		action = report.ActionIgnore
	}

	if b.metrics != nil {
		b.metrics.RecordInterception(b.feature, string(action))
		b.metrics.RecordExemptionCheck(b.feature, exempt)
	}
	telemetry.RecordInterceptionMetric(ctx, b.feature, string(action), exempt)
	telemetry.RecordInterceptionEvent(trace.SpanFromContext(ctx), b.feature, string(action), exempt)

	if b.policy.Debug() {
		b.emit(action, args)
	}

	if exempt {
		return b.native(args...)
	}
	return b.substitute(args...)
}

func (b *Binding) emit(action report.Action, args []any) {
	defer func() {
		// A broken reporter must not take the call down with it.
		_ = recover()
	}()

	var pageURL string
	if b.pageURL != nil {
		pageURL = b.pageURL()
	}
	var stack []string
	if b.stack != nil {
		stack = b.stack()
	}

	b.reporter.Report(report.New(action, b.feature, b.member, pageURL, stack, args))
}
