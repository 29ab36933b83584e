// Package report defines the structured record emitted for intercepted calls
// when debugging is enabled, and the sink interface records are delivered to.
// Delivery transport is owned by the embedding host; this package only builds
// records and offers in-process sinks.
package report

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action describes how an intercepted call was routed.
type Action string

const (
	// ActionIgnore means the caller was exempt and the native path ran.
	ActionIgnore Action = "ignore"
	// ActionRestrict means the substitute path ran.
	ActionRestrict Action = "restrict"
)

// Record captures one interception event.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Feature   string    `json:"feature"`
	Member    string    `json:"member"`
	PageURL   string    `json:"page_url,omitempty"`
	Stack     []string  `json:"stack,omitempty"`
	Args      []any     `json:"args,omitempty"`
}

// New builds a Record for an intercepted call.
func New(action Action, feature, member, pageURL string, stack []string, args []any) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Feature:   feature,
		Member:    member,
		PageURL:   pageURL,
		Stack:     stack,
		Args:      args,
	}
}

// Reporter consumes interception records. Implementations must be safe for
// concurrent use and must never block the intercepted call.
type Reporter interface {
	Report(Record)
}

// SlogReporter writes each record as a structured log line.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter constructs a SlogReporter; a nil logger uses the default.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

// Report logs the record at debug level.
func (r *SlogReporter) Report(rec Record) {
	r.logger.Debug("interception",
		"id", rec.ID,
		"action", string(rec.Action),
		"feature", rec.Feature,
		"member", rec.Member,
		"page_url", rec.PageURL,
		"stack_depth", len(rec.Stack),
		"args", len(rec.Args),
	)
}

// NopReporter discards every record.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(Record) {}
