package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modkit/brickflow/internal/app"
	"github.com/modkit/brickflow/internal/cli"
	"github.com/modkit/brickflow/internal/config"
	"github.com/modkit/brickflow/internal/hclconf"
	"github.com/modkit/brickflow/internal/yamlconf"
)

// main is the entrypoint for the brickflow application.
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
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()

	brickflowApp := app.NewApp(outW, appConfig, selectLoader(appConfig.ModPath))

	return brickflowApp.Run(context.Background(), appConfig)
}

// selectLoader picks the mod loader by file extension. Directories and
// unknown extensions default to HCL.
func selectLoader(path string) config.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlconf.NewLoader()
	default:
		return hclconf.NewLoader()
	}
}
