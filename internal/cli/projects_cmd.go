package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect tracked projects",
	}

	cmd.AddCommand(newProjectsListCmd())
	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := backendClient()
			if err != nil {
				return err
			}
			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects tracked")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("  %-14s %-24s %-10s %3.0f%% (%d/%d done, %d pending)\n",
					p.ID, p.Name, p.Status, p.Progress(), p.CompletedTasks, p.TotalTasks, p.PendingTasks)
			}
			return nil
		},
	}
}
