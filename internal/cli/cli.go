package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/zkan/dagster/internal/app"
)

// Command selects the top-level action to perform.
type Command string

const (
	// CommandRun executes the pipeline once.
	CommandRun Command = "run"
	// CommandSchedulesUp reconciles declared schedules against storage.
	CommandSchedulesUp Command = "schedules-up"
	// CommandScheduleStart resumes a stored schedule.
	CommandScheduleStart Command = "schedule-start"
	// CommandScheduleStop pauses a stored schedule.
	CommandScheduleStop Command = "schedule-stop"
	// CommandSchedulesList prints all stored schedules.
	CommandSchedulesList Command = "schedules-list"
)

// Invocation is the fully parsed result of a command line: what to do, with
// which configuration, and for which schedule when relevant.
type Invocation struct {
	Command      Command
	Config       *app.Config
	ScheduleName string
}

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dagster", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Dagster - A typed, declarative pipeline runner.

Usage:
  dagster [options] [PIPELINE_PATH]

Arguments:
  PIPELINE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "", "Path to the pipeline file or directory.")
	pFlag := flagSet.String("p", "", "Path to the pipeline file or directory (shorthand).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 10, "Number of concurrent workers for the executor.")
	solidsPathFlag := flagSet.String("solids-path", "solids", "Path to the directory containing solid manifests.")
	schedulesDBFlag := flagSet.String("schedules-db", "", "Path to the SQLite schedule database. Empty uses in-memory storage.")
	commandFlag := flagSet.String("command", "run", "Action to perform. Options: 'run', 'schedules-up', 'schedule-start', 'schedule-stop', 'schedules-list'.")
	scheduleFlag := flagSet.String("schedule", "", "Schedule name for 'schedule-start' and 'schedule-stop'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *pipelineFlag != "" {
		path = *pipelineFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Pipeline path determined.", "path", path)

	if path == "" {
		slog.Debug("No pipeline path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	command := Command(strings.ToLower(*commandFlag))
	switch command {
	case CommandRun, CommandSchedulesUp, CommandSchedulesList:
		// valid
	case CommandScheduleStart, CommandScheduleStop:
		if *scheduleFlag == "" {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("command '%s' requires -schedule", command)}
		}
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command '%s'", *commandFlag)}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PipelinePath: path,
		SolidsPath:   *solidsPathFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
		SchedulesDB:  *schedulesDBFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", string(command))
	return &Invocation{
		Command:      command,
		Config:       config,
		ScheduleName: *scheduleFlag,
	}, false, nil
}
