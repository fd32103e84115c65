// Package main provides the starform CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/starform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
