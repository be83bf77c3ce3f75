/*
Package main is the entry point for the salarycast CLI.

Usage:

	salarycast [command]

Available Commands:

	serve       Serve salary predictions over HTTP
	encoders    Build and persist the encoders and column mappings only
	train       Train a salary model and persist all artifacts
	predict     Predict salaries from the command line
	inspect     Report artifact state and dataset column checks
	loadtest    Drive a running server with generated profiles and verify responses

Configuration is layered: defaults, then the YAML file named by
SALARYCAST_CONFIG or --config, then SALARYCAST_* environment variables.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/salarycast/internal/cli"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(versionString())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "salarycast:", err)
		stop()
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
