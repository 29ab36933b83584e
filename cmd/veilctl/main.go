// Package main is the entry point for the veilctl binary, the operator tool
// for the substitution layer: it validates exemption configuration, derives
// digests for debugging value stability, and runs a config watch loop with a
// metrics listener.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for veilctl.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "veilctl",
		Short: "Operator tooling for the substitution layer",
		Long: `veilctl inspects and validates the anti-fingerprinting substitution core.

It checks exemption configuration before deployment, derives keyed digests so
operators can confirm value stability for a site and session, and can watch a
configuration file, applying reloads and serving Prometheus metrics.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newDigestCmd(),
		newStepCmd(),
		newWatchCmd(),
	)

	return rootCmd
}
