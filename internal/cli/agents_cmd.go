package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emas-project/emascope/internal/api"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect and control backend agents",
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsInfoCmd())
	cmd.AddCommand(newAgentsStartCmd())
	cmd.AddCommand(newAgentsStopCmd())
	return cmd
}

// backendClient builds an API client from the resolved config.
func backendClient() (*api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return api.New(cfg.Server, log), nil
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := backendClient()
			if err != nil {
				return err
			}
			agents, err := client.ListAgents(cmd.Context())
			if err != nil {
				return err
			}
			if len(agents) == 0 {
				fmt.Println("No agents registered")
				return nil
			}
			for _, a := range agents {
				fmt.Printf("  %-14s %-24s %-8s tasks=%d success=%.1f%%\n",
					a.ID, a.Name, a.Status, a.Performance.TasksCompleted, a.Performance.SuccessRate)
			}
			return nil
		},
	}
}

func newAgentsInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <agent-id>",
		Short: "Show details about an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := backendClient()
			if err != nil {
				return err
			}
			a, err := client.GetAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Agent: %s (%s)\n", a.ID, a.Name)
			fmt.Printf("  Type:         %s\n", a.Type)
			fmt.Printf("  Status:       %s\n", a.Status)
			fmt.Printf("  Version:      %s\n", a.Version)
			if a.Description != "" {
				fmt.Printf("  Description:  %s\n", a.Description)
			}
			if len(a.Capabilities) > 0 {
				fmt.Printf("  Capabilities: %v\n", a.Capabilities)
			}
			fmt.Printf("  Tasks:        %d completed, %.1f%% success, avg %.0fms\n",
				a.Performance.TasksCompleted, a.Performance.SuccessRate, a.Performance.AvgExecutionMs)
			if !a.LastActivity.IsZero() {
				fmt.Printf("  LastActivity: %s\n", a.LastActivity.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newAgentsStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <agent-id>",
		Short: "Ask the backend to start an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := backendClient()
			if err != nil {
				return err
			}
			if err := client.StartAgent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Start of %s requested\n", args[0])
			return nil
		},
	}
}

func newAgentsStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <agent-id>",
		Short: "Ask the backend to stop an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := backendClient()
			if err != nil {
				return err
			}
			if err := client.StopAgent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Stop of %s requested\n", args[0])
			return nil
		},
	}
}
