package main

import (
	"fmt"
	"os"

	"github.com/flivyn/flivynterm/pkg/auth"
	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/shell"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "flivynterm",
	Short: "FlivynTerm - a fake Unix terminal in the browser",
	Long: `FlivynTerm serves a simulated shell over WebSocket. Every visitor gets
an in-memory filesystem, a vim-like editor and a game of snake.

Run without a subcommand to start the server, or use 'flivynterm local'
to open a session in this terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := configuration.Initialize(configPath); err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}
		if err := logger.Initialize(); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger.ConfigInfo("System started - Configuration loaded from: %s", configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "settings.cfg", "path to the settings file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(localCmd)
}

// newInterpreter builds the shell every session shares. A configured bcrypt
// hash wins over the plain admin password.
func newInterpreter() (*shell.Interpreter, error) {
	var verifier shell.Verifier
	if hash := configuration.GetString("Terminal", "admin_password_hash", ""); hash != "" {
		v, err := auth.NewPasswordVerifierFromHash(hash)
		if err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		verifier = v
	} else {
		v, err := auth.NewPasswordVerifier(configuration.GetString("Terminal", "admin_password", "admin123"))
		if err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
		verifier = v
	}
	return shell.New(
		shell.WithHost(configuration.GetString("Terminal", "prompt_host", "flivyn")),
		shell.WithVerifier(verifier),
	), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "flivynterm: %v\n", err)
		os.Exit(1)
	}
}
