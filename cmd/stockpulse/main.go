// Package main is the StockPulse CLI.
//
// Usage:
//
//	go run ./cmd/stockpulse seasonal
//	go run ./cmd/stockpulse screen
//	go run ./cmd/stockpulse serve
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/cmd/stockpulse/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
