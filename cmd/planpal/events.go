package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/eventview"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List upcoming calendar events",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		output, _ := cmd.Flags().GetString("output")

		format, err := eventview.ParseOutputFormat(output)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, nil)
		if err != nil {
			return err
		}

		gateway, err := a.localGateway(cmd.Context(), offline)
		if err != nil {
			return fmt.Errorf("failed to connect calendar: %w", err)
		}

		return printEvents(cmd.Context(), cmd.OutOrStdout(), gateway, format, a.loc, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().Bool("offline", false, "use an in-memory calendar instead of Google Calendar")
	eventsCmd.Flags().StringP("output", "o", "table", "output format (table, json, yaml, ics)")
}

func printEvents(ctx context.Context, w io.Writer, gateway calendar.Gateway, format eventview.OutputFormat, loc *time.Location, from time.Time) error {
	events, err := gateway.ListEvents(ctx, from)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	formatter, err := eventview.NewFormatterFactory(loc).Create(format)
	if err != nil {
		return err
	}
	out, err := formatter.FormatEvents(events)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}
