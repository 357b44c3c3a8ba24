package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harun/termai/internal/cli"
)

func main() {
	// Ctrl-C at the prompt is read by the line editor in raw mode; a signal
	// only arrives while a remote call is in flight.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
