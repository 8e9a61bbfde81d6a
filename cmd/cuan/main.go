// Command cuan is a terminal client for the cuan personal finance backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimurrofid/petualangan-cuan/internal/app"
	"github.com/alimurrofid/petualangan-cuan/internal/cli"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

func main() {
	cli.LoadEnvFile()
	// stdout carries command output; logs go to stderr.
	logger := cli.SetupLogger(log.ComponentCLI, os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err)
		os.Exit(1)
	}

	err = run(ctx, a, os.Args[1:], os.Stdin, os.Stdout)
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "cuan:", err)
		}
		os.Exit(1)
	}
}
