package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harunnryd/planpal/internal/mcptools"
)

var version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the scheduling tools over MCP (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")

		a, err := newApp(cfg, nil)
		if err != nil {
			return err
		}

		gateway, err := a.localGateway(cmd.Context(), offline)
		if err != nil {
			return fmt.Errorf("failed to connect calendar: %w", err)
		}

		bridge := mcptools.NewBridge(a.runner, a.agent, a.resolver, gateway)
		if err := mcptools.ServeStdio(bridge.NewServer(version)); err != nil {
			return fmt.Errorf("mcp server stopped with error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("offline", false, "use an in-memory calendar instead of Google Calendar")
}
