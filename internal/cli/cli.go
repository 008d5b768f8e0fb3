package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/modkit/brickflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("brickflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Brickflow - A declarative brick pipeline runner.

Usage:
  brickflow [options] [MOD_PATH]

Arguments:
  MOD_PATH
    Path to a mod definition file (.hcl, .yaml) or a directory containing one.

Options:
`)
		flagSet.PrintDefaults()
	}

	modFlag := flagSet.String("mod", "", "Path to the mod definition file or directory.")
	mFlag := flagSet.String("m", "", "Path to the mod definition file or directory (shorthand).")
	inputFlag := flagSet.String("input", "", "JSON object seeding the pipeline input.")
	inputFileFlag := flagSet.String("input-file", "", "Path to a JSON file seeding the pipeline input.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logValuesFlag := flagSet.Bool("log-values", false, "Log rendered step arguments and outputs at debug level.")
	headlessFlag := flagSet.Bool("headless", false, "Return renderer payloads as the run result instead of erroring.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *modFlag != "" {
		path = *modFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Mod path determined.", "path", path)

	if path == "" {
		slog.Debug("No mod path provided, printing usage and exiting.")
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

	inputJSON := *inputFlag
	if *inputFileFlag != "" {
		if inputJSON != "" {
			return nil, false, &ExitError{Code: 2, Message: "only one of -input and -input-file may be set"}
		}
		raw, err := os.ReadFile(*inputFileFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("failed to read input file: %v", err)}
		}
		inputJSON = string(raw)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModPath:   path,
		InputJSON: inputJSON,
		LogFormat: logFormat,
		LogLevel:  logLevel,
		LogValues: *logValuesFlag,
		Headless:  *headlessFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
