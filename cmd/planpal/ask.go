package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Run a single request and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")

		a, err := newApp(cfg, nil)
		if err != nil {
			return err
		}

		signals := NewSignalHandler(cmd.Context())
		signals.Start()
		defer signals.Stop()
		ctx := signals.Context()

		gateway, err := a.localGateway(ctx, offline)
		if err != nil {
			return fmt.Errorf("failed to connect calendar: %w", err)
		}

		reply := a.agent.Run(ctx, strings.Join(args, " "), gateway)
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("offline", false, "use an in-memory calendar instead of Google Calendar")
}
