package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
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

		repl := NewREPL(a, gateway, cmd.InOrStdin(), cmd.OutOrStdout())
		return repl.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("offline", false, "use an in-memory calendar instead of Google Calendar")
}

type REPL struct {
	app       *app
	gateway   calendar.Gateway
	scanner   *bufio.Scanner
	out       io.Writer
	sessionID string
}

func NewREPL(a *app, gateway calendar.Gateway, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		app:       a,
		gateway:   gateway,
		scanner:   bufio.NewScanner(in),
		out:       out,
		sessionID: "cli-" + ulid.Make().String(),
	}
}

// Start reads lines until EOF, /exit or cancellation. Each line is one turn.
func (r *REPL) Start(ctx context.Context) error {
	fmt.Fprintf(r.out, "PlanPal session %s\n", r.sessionID)
	fmt.Fprintln(r.out, "Type '/exit' to quit.")

	ctx = logger.WithSessionID(ctx, r.sessionID)
	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(r.out, "> ")
		if !r.scanner.Scan() {
			fmt.Fprintln(r.out)
			return r.scanner.Err()
		}

		text := strings.TrimSpace(r.scanner.Text())
		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		fmt.Fprintln(r.out, r.app.agent.Run(ctx, text, r.gateway))
	}
}
