// Package main is the entry point for the charbuilder CLI
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitError ends the process with a fixed status after its output was printed
type exitError struct {
	status  int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

func exitCode(err error) int {
	var exit *exitError
	if stderrors.As(err, &exit) {
		return exit.status
	}
	return errors.GetCode(err).ExitCode()
}
