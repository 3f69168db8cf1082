package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"fmpmcp/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigInvalid indicates the configuration could not be loaded or validated.
	ExitCodeConfigInvalid = 2
)

// rootCmd represents the base command for the fmpmcp application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fmpmcp",
	Short: "MCP server for Financial Modeling Prep market data",
	Long: `fmpmcp exposes Financial Modeling Prep market data to AI assistants
over the Model Context Protocol.

Each client gets its own protocol server, built from the configuration it
passes on the /mcp query string, and cached between requests. Clients can
receive every operation, a fixed set of toolsets, or start with three
meta-operations and enable toolsets as they need them.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fmpmcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// configError marks failures to load or validate configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfigInvalid
	}
	return ExitCodeError
}

// loadServerConfig resolves configuration for commands that do not start
// the server: defaults, then the file, then the environment.
func loadServerConfig(path string) (config.ServerConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.ServerConfig{}, &configError{err: err}
	}
	config.ApplyEnv(&cfg, os.Getenv)
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
