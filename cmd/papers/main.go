// cmd/papers/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/papers/internal/cli"
)

func main() {
	// Cancel the run on interrupt so in-flight downloads stop and the
	// summary still gets written for the papers already processed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
