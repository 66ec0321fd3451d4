package cli

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emas-project/emascope/internal/console"
	"github.com/emas-project/emascope/internal/logging"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// The dashboard owns the terminal, so logs go to a file.
			logFile := cfg.Logging.File
			if logFile == "" {
				logFile = filepath.Join(paths.Logs, "console.log")
			}
			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			fileLog, err := logging.NewFromConfig(level, cfg.Logging.ConsoleStyle, logFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return console.New(cfg, paths.Config, fileLog).Run(ctx)
		},
	}
}
