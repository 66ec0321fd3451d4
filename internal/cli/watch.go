package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emas-project/emascope/internal/channel"
)

func newWatchCmd() *cobra.Command {
	var events []string
	var raw bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream real-time events to stdout",
		Long:  "Connects the real-time channel and prints every inbound event until interrupted. Use --event to filter by event type.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ch := channel.New(cfg.Server.ResolveSocketURL(), channel.Options{
				HandshakeTimeout:     cfg.Server.ConnectTimeout(),
				ReconnectDelay:       cfg.Channel.ReconnectDelay(),
				MaxReconnectAttempts: cfg.Channel.MaxReconnectAttempts,
			}, log)

			wanted := make(map[string]bool, len(events))
			for _, e := range events {
				wanted[e] = true
			}

			ch.Subscribe(channel.EventAny, func(env channel.Envelope) {
				if len(wanted) > 0 && !wanted[env.Type] {
					return
				}
				if raw {
					out, err := json.Marshal(env)
					if err != nil {
						return
					}
					fmt.Println(string(out))
					return
				}
				fmt.Printf("[%s] %-16s %s\n", env.Time().Format("15:04:05"), env.Type, string(env.Data))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := ch.Start(ctx); err != nil {
				return err
			}
			defer ch.Close()

			if err := ch.WaitState(ctx, channel.StateConnected); err != nil {
				return err
			}
			fmt.Printf("Connected to %s, streaming events (Ctrl+C to stop)\n", cfg.Server.ResolveSocketURL())

			// Block until interrupted or reconnect attempts run out.
			errCh := make(chan error, 1)
			go func() { errCh <- ch.WaitState(ctx, channel.StateError) }()
			select {
			case <-ctx.Done():
				return nil
			case err := <-errCh:
				if err != nil {
					return nil // interrupted while waiting
				}
				return fmt.Errorf("channel gave up: %s", ch.LastError())
			}
		},
	}

	cmd.Flags().StringSliceVar(&events, "event", nil, "event types to include (repeatable; default all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw JSON envelopes")
	return cmd
}
