package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veilware/veilcore"
	"github.com/veilware/veilcore/pkg/config"
	"github.com/veilware/veilcore/pkg/derive"
	"github.com/veilware/veilcore/pkg/logging"
	"github.com/veilware/veilcore/pkg/perturb"
)

// newValidateCmd checks a configuration file, compiling every exemption
// pattern, and prints a summary.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			features := make([]string, 0, len(cfg.Exemptions))
			for feature := range cfg.Exemptions {
				features = append(features, feature)
			}
			sort.Strings(features)

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d feature(s), debug=%v\n", len(features), cfg.Debug)
			for _, feature := range features {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d pattern(s)\n", feature, len(cfg.Exemptions[feature]))
			}
			return nil
		},
	}
}

// newDigestCmd derives a keyed digest so an operator can confirm what value a
// site would observe for given key material.
func newDigestCmd() *cobra.Command {
	var (
		secret string
		domain string
		input  float64
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Derive the keyed digest for a session/domain/input triple",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				minted, err := derive.NewSessionSecret()
				if err != nil {
					return err
				}
				secret = minted
				fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\n", secret)
			}
			fmt.Fprintln(cmd.OutOrStdout(), derive.Digest(secret, domain, input))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Session secret (minted fresh when omitted)")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain key")
	cmd.Flags().Float64Var(&input, "input", 0, "Numeric input")
	return cmd
}

// newStepCmd prints the perturbation sequence from a seed, for comparing
// derived noise across implementations.
func newStepCmd() *cobra.Command {
	var (
		seed uint64
		n    int
	)

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Print successive perturbation states from a seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("count must be positive, got %d", n)
			}
			v := seed
			for i := 0; i < n; i++ {
				v = perturb.Step(v)
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 1, "Initial 63-bit state")
	cmd.Flags().IntVar(&n, "count", 10, "Number of states to print")
	return cmd
}

// newWatchCmd runs the reload loop: it builds a core from the file, applies
// every successful reload, and serves Prometheus metrics until interrupted.
func newWatchCmd() *cobra.Command {
	var (
		logLevel    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch <config.yaml>",
		Short: "Watch a configuration file and apply reloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(logging.Config{Level: logLevel})

			loader, err := config.NewLoader(args[0], logger)
			if err != nil {
				return err
			}
			defer loader.Close()

			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			core, err := veilcore.New(cfg, logger)
			if err != nil {
				return err
			}

			if err := loader.Watch(func(next *config.Config) {
				if err := core.Reconfigure(next); err != nil {
					logger.Error("reconfigure rejected", "error", err)
				}
			}); err != nil {
				return err
			}

			addr := metricsAddr
			if addr == "" {
				addr = cfg.Metrics.Address
			}
			if addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", core.Metrics().Handler())
				go func() {
					logger.Info("metrics listener started", "address", addr)
					if err := http.ListenAndServe(addr, mux); err != nil {
						logger.Error("metrics listener failed", "error", err)
					}
				}()
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (overrides config)")
	return cmd
}
