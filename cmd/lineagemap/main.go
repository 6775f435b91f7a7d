// Package main provides the LineageMap CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/lineagemap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
