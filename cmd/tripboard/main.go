// Package main is the entry point for the tripboard binary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/trip-board/backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
