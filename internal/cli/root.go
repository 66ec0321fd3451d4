// Package cli wires the emascope command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/emas-project/emascope/internal/config"
	"github.com/emas-project/emascope/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	serverURL string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emascope",
		Short: "emascope — terminal console for the EMAS multi-agent backend",
		Long:  "emascope connects to an Enterprise Multi-Agent System backend over REST and WebSocket and renders its agents, projects, and live activity in the terminal.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.emascope/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConsoleCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
