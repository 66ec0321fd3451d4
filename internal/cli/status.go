package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/emas-project/emascope/internal/api"
	"github.com/emas-project/emascope/internal/config"
	"github.com/emas-project/emascope/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show emascope configuration and backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("emascope %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Printf("Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Printf("Server:  url=%s socket=%s\n", cfg.Server.URL, cfg.Server.ResolveSocketURL())
			fmt.Printf("Channel: reconnectDelay=%s maxAttempts=%d\n",
				cfg.Channel.ReconnectDelay(), cfg.Channel.MaxReconnectAttempts)
			fmt.Printf("History: agentUpdates=%d taskCompletions=%d\n",
				cfg.History.AgentUpdates, cfg.History.TaskCompletions)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			fmt.Println()
			client := api.New(cfg.Server, log)
			health, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Printf("Backend: unreachable (%v)\n", err)
				return nil
			}
			fmt.Printf("Backend: %s, %d active agents\n", health.Status, health.ActiveAgents)
			names := make([]string, 0, len(health.Services))
			for name := range health.Services {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-16s %s\n", name, health.Services[name])
			}
			return nil
		},
	}
}
