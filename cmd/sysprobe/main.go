package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/sysprobe/internal/cmd"
	"github.com/felixgeelhaar/sysprobe/internal/exitcode"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		exitcode.Exit(exitcode.Success)
	}

	// The report already explains a findings-based exit code.
	var coded *exitcode.Error
	if errors.As(err, &coded) {
		if coded.Code == exitcode.Interrupted {
			fmt.Fprintln(os.Stderr, "\nScan cancelled by user")
		}
		exitcode.Exit(coded.Code)
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
		exitcode.Exit(exitcode.Interrupted)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitcode.ExitWithError(err)
}
