package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/mainframe/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("mainframe", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mainframe - a module loader for hosted script environments.

Usage:
  mainframe [options] [SCRIPTS_ROOT]

Arguments:
  SCRIPTS_ROOT
    Directory containing the shared and local script trees.

Options:
`)
		flagSet.PrintDefaults()
	}

	scriptsFlag := flagSet.String("scripts", "", "Path to the scripts root directory.")
	sFlag := flagSet.String("s", "", "Path to the scripts root directory (shorthand).")
	configFlag := flagSet.String("config", "mainframe.hcl", "Path to the HCL configuration file.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *scriptsFlag != "" {
		path = *scriptsFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &app.Config{
		ConfigPath:  *configFlag,
		ScriptsRoot: path,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
	}, false, nil
}
