package main

import (
	"context"
	"fmt"
	"os"
	"time"

	app "github.com/valter-silva-au/bounty-board/internal"
	"github.com/valter-silva-au/bounty-board/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing bboard: %v\n", err)
		os.Exit(1)
	}

	runErr := cli.Execute()

	// Flush any debounced write before exiting.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
		if runErr == nil {
			os.Exit(1)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
