// Package main is the entry point for spliit-sync CLI.
package main

import (
	"os"

	"github.com/actual-spliit/syncd/cmd/spliit-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
