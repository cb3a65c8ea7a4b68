package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/store"
	"github.com/flivyn/flivynterm/pkg/tui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var noRecord bool

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Open a terminal session in this terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		interpreter, err := newInterpreter()
		if err != nil {
			return err
		}

		cfg := tui.Config{
			SessionID:    uuid.NewString(),
			Interpreter:  interpreter,
			Theme:        configuration.GetString("Terminal", "default_theme", "dark"),
			GridSize:     configuration.GetInt("Snake", "grid_size", 20),
			TickInterval: configuration.GetDuration("Snake", "tick_interval", 150*time.Millisecond),
			MaxLines:     configuration.GetInt("Editor", "max_lines", 5000),
		}

		if !noRecord {
			st, err := store.Open(configuration.GetString("Database", "path", "flivynterm.db"))
			if err != nil {
				logger.Warn(logger.AreaDatabase, "Recording disabled: %v", err)
			} else {
				defer st.Close()
				st.SessionOpened(cfg.SessionID, "local", "")
				defer st.SessionClosed(cfg.SessionID)
				cfg.Recorder = st
			}
		}

		return tui.Run(ctx, cfg)
	},
}

func init() {
	localCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not write commands and scores to the database")
}
