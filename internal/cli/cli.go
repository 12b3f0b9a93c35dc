package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/loomworks/loom/internal/app"
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
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("loom", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Loom - environment module ordering and tool availability checker.

Usage:
  loom [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to the workspace .hcl file or a directory containing .hcl files.
    Defaults to loom.hcl in the current directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the workspace config file or directory.")
	cFlag := flagSet.String("c", "", "Path to the workspace config file or directory (shorthand).")
	modulesPathFlag := flagSet.String("modules-path", "modules", "Path to the directory scanned for module manifests.")
	settingsFlag := flagSet.String("settings", "", "Path to the TOML runtime settings file.")
	modeFlag := flagSet.String("mode", "report", "Output mode. Options: 'report', 'order', or 'status'.")
	reverseFlag := flagSet.Bool("reverse", false, "Emit the order for teardown (dependents before dependencies).")
	alphabeticalFlag := flagSet.Bool("alphabetical", false, "Break ordering ties alphabetically instead of by declaration order.")
	hideDisabledFlag := flagSet.Bool("hide-disabled", false, "Omit disabled modules from the order.")
	prioritizeConfiguredFlag := flagSet.Bool("prioritize-configured", false, "Order explicitly configured modules before discovered ones where dependencies allow.")
	noCacheFlag := flagSet.Bool("no-cache", false, "Bypass the tool status cache.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := "loom.hcl"
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

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
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:           path,
		ModulesPath:          *modulesPathFlag,
		SettingsPath:         *settingsFlag,
		Mode:                 strings.ToLower(*modeFlag),
		LogFormat:            logFormat,
		LogLevel:             logLevel,
		Reverse:              *reverseFlag,
		Alphabetical:         *alphabeticalFlag,
		HideDisabled:         *hideDisabledFlag,
		PrioritizeConfigured: *prioritizeConfiguredFlag,
		NoCache:              *noCacheFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
