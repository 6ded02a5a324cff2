// Package main is the one-shot CLI entry point for mambarun.
//
// The CLI maps the invocation surface onto flags, wires the micromamba
// provider and Python script runner from configuration, and runs either
// the full provision/execute/teardown lifecycle or the persistent
// run-only-if-ready variant.
package main

import (
	"context"
	"os"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
