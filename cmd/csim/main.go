// Package main provides the entry point for csim, a cache simulator that
// replays Valgrind memory traces and reports hits, misses, and evictions.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
