// Package veilcore wires the substitution layer together: the exemption
// policy engine, interception bindings, debug reporting, and telemetry. A
// Core is built once from configuration; feature modules then derive stable
// substitute values through pkg/derive and pkg/perturb and route protected
// calls through bindings created here.
package veilcore

import (
	"fmt"
	"log/slog"

	"github.com/veilware/veilcore/internal/callsite"
	"github.com/veilware/veilcore/pkg/config"
	"github.com/veilware/veilcore/pkg/exemption"
	"github.com/veilware/veilcore/pkg/intercept"
	"github.com/veilware/veilcore/pkg/report"
	"github.com/veilware/veilcore/pkg/telemetry"
)

// Core owns the engine and collaborators shared by every binding.
type Core struct {
	engine   *exemption.Engine
	metrics  *telemetry.Metrics
	reporter report.Reporter
	source   exemption.CallSiteSource
	logger   *slog.Logger

	// pageURL supplies the current page location for debug records; set by
	// the embedding host via SetPageURL.
	pageURL func() string
}

// Option customizes Core construction.
type Option func(*Core)

// WithReporter replaces the default slog-backed debug report sink.
func WithReporter(r report.Reporter) Option {
	return func(c *Core) { c.reporter = r }
}

// WithCallSiteSource replaces the default runtime stack source. Hosts that
// intercept inside a scripted environment install their adapter here so
// exemption checks see URL-shaped frames.
func WithCallSiteSource(s exemption.CallSiteSource) Option {
	return func(c *Core) { c.source = s }
}

// New builds a Core from cfg. Configuration errors, including any malformed
// exemption pattern, fail construction; they indicate a deployment mistake
// and are never masked.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("veilcore: configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Core{
		metrics: telemetry.NewMetrics(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == nil {
		c.source = callsite.New()
	}
	if c.reporter == nil {
		c.reporter = report.NewSlogReporter(logger)
	}

	c.engine = exemption.NewEngine(c.source)
	if err := c.engine.Configure(cfg.Exemptions, cfg.Debug); err != nil {
		return nil, fmt.Errorf("veilcore: %w", err)
	}

	logger.Info("substitution core configured",
		"features", len(cfg.Exemptions), "debug", cfg.Debug)
	return c, nil
}

// Engine exposes the exemption policy engine.
func (c *Core) Engine() *exemption.Engine { return c.engine }

// Metrics exposes the Prometheus collectors.
func (c *Core) Metrics() *telemetry.Metrics { return c.metrics }

// SetPageURL installs the host's page-location accessor used in debug
// records. Intended to be set once during host integration.
func (c *Core) SetPageURL(fn func() string) { c.pageURL = fn }

// Bind creates the interception binding for one protected capability. The
// page-URL accessor is resolved at call time, so bindings created before
// SetPageURL still pick it up.
func (c *Core) Bind(feature, member string, native, substitute intercept.Callable) (*intercept.Binding, error) {
	return intercept.NewBinding(intercept.Options{
		Feature:    feature,
		Member:     member,
		Native:     native,
		Substitute: substitute,
		Policy:     c.engine,
		Reporter:   c.reporter,
		Metrics:    c.metrics,
		PageURL: func() string {
			if c.pageURL != nil {
				return c.pageURL()
			}
			return ""
		},
		Stack: c.source.CallSites,
	})
}

// Reconfigure replaces the exemption lists and debug flag from cfg. Each call
// fully replaces the previous configuration; swapping while interception
// traffic is in flight is last-writer-wins. A failed reconfigure keeps the
// previous policy active.
func (c *Core) Reconfigure(cfg *config.Config) error {
	if err := c.engine.Configure(cfg.Exemptions, cfg.Debug); err != nil {
		c.metrics.RecordConfigReload("failure")
		return fmt.Errorf("veilcore: %w", err)
	}
	c.metrics.RecordConfigReload("success")
	c.logger.Info("substitution core reconfigured",
		"features", len(cfg.Exemptions), "debug", cfg.Debug)
	return nil
}
