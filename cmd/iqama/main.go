package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/iqama/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd(ctx).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "iqama: %v\n", err)
		return 1
	}
	return 0
}
