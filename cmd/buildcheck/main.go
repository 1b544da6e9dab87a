// Package main is the entry point for the buildcheck CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/buildcheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
