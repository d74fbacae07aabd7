package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minifw",
		Short: "Reactive state engine tooling",
		Long: `minifw runs and inspects a path-addressed reactive state engine.

The serve command starts an engine with an HTTP inspection surface:
read and mutate state at any path, stream every change over WebSocket,
and scrape Prometheus metrics. Optional file persistence mirrors a
configured path to disk and restores it on external edits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
