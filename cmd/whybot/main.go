// cmd/whybot/main.go
//
// This is the entry point for the whybot CLI.
// Run without a subcommand it opens the interactive board; the plan, render
// and health subcommands work headless against the same planner.

package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
