// Command orgsync synchronises organisation metadata from GitHub or Azure
// DevOps into the analytics backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/orgsync/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)

	if err := cli.Execute(ctx); err != nil {
		cli.PrintError(err)
		stop()
		os.Exit(1)
	}
}
