// Command folio turns PDFs into assistants that answer questions grounded
// in the document.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)

	app, err := wire(ctx)
	if err != nil {
		logger.Warn("startup: %v", err)
	}
	defer app.Close()
	cli.SetServices(app.services)

	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
