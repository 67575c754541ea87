package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zkan/dagster/internal/app"
	"github.com/zkan/dagster/internal/cli"
	"github.com/zkan/dagster/internal/hcl"
)

// main is the entrypoint for the dagster application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	invocation, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "A critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	dagsterApp := app.NewApp(outW, invocation.Config, loader)

	ctx := context.Background()
	switch invocation.Command {
	case cli.CommandSchedulesUp:
		return dagsterApp.SchedulesUp(ctx, invocation.Config)
	case cli.CommandScheduleStart:
		return dagsterApp.ScheduleStart(ctx, invocation.Config, invocation.ScheduleName)
	case cli.CommandScheduleStop:
		return dagsterApp.ScheduleStop(ctx, invocation.Config, invocation.ScheduleName)
	case cli.CommandSchedulesList:
		return dagsterApp.SchedulesList(ctx, invocation.Config)
	default:
		return dagsterApp.Run(ctx, invocation.Config)
	}
}
