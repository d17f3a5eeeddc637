// Package main is the entry point for tailor-etl.
package main

import (
	"fmt"
	"os"

	"github.com/tailorworks/tailor-etl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
